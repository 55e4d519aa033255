package profile

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kenal/service/internal/middleware"
	"github.com/kenal/service/internal/response"
)

// Handler holds HTTP handlers for profile endpoints. The authenticated user
// ID always comes from the request context, never from the request body.
type Handler struct {
	svc *Service
}

// NewHandler creates a new profile Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type updateProfileRequest struct {
	Username *string `json:"username,omitempty" example:"budisantoso"`
	Bio      *string `json:"bio,omitempty"      example:"Coffee and code."`
}

type uploadAvatarRequest struct {
	// Base64-encoded image bytes; a data URL prefix is accepted and stripped.
	Image string `json:"image" example:"/9j/4AAQSkZJRg..."`
}

type usernameCheckData struct {
	Available bool `json:"available" example:"true"`
}

// GetProfile godoc
//
//	@Summary		Get current profile
//	@Description	Returns the authenticated user's profile, or null data when the profile has not been provisioned yet.
//	@Tags			profiles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Profile}
//	@Failure		401	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	p, err := h.svc.Get(r.Context(), userID)
	if errors.Is(err, ErrNotFound) {
		response.OK(w, nil)
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, p)
}

// UpdateProfile godoc
//
//	@Summary		Update profile fields
//	@Description	Partially updates username and/or bio. Absent fields are left untouched. Username is lowercased and must be globally unique.
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		updateProfileRequest	true	"Fields to update"
//	@Success		200		{object}	response.Envelope{data=Profile}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/users/me [patch]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), userID, UpdateInput{
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, p)
}

// UploadAvatar godoc
//
//	@Summary		Replace profile picture
//	@Description	Uploads the image to object storage under the user's stable key and persists the new cache-busted public URL. On upload failure the profile is unchanged; on persist failure retry the call.
//	@Tags			profiles
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		uploadAvatarRequest	true	"Base64-encoded image"
//	@Success		200		{object}	response.Envelope{data=Profile}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Router			/users/me/avatar [post]
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req uploadAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	image, err := decodeImagePayload(req.Image)
	if err != nil {
		response.FieldError(w, http.StatusBadRequest, "image", "image must be base64-encoded")
		return
	}

	p, err := h.svc.ReplacePicture(r.Context(), userID, image)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, p)
}

// CheckUsername godoc
//
//	@Summary		Check username availability
//	@Description	Reports whether the username is free to claim. Advisory: the final arbiter is the unique constraint at update time.
//	@Tags			profiles
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	query		string	true	"Username to check"
//	@Success		200			{object}	response.Envelope{data=usernameCheckData}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Failure		500			{object}	response.Envelope
//	@Router			/users/username-check [get]
func (h *Handler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	available, err := h.svc.CheckUsername(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.OK(w, map[string]bool{"available": available})
}

// writeServiceError maps service errors to HTTP responses, attributing
// field-level failures to the offending input.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		response.FieldError(w, http.StatusBadRequest, ve.Field, ve.Message)
	case errors.Is(err, ErrUsernameTaken):
		response.FieldError(w, http.StatusConflict, "username", "username is already taken")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "profile not found")
	case errors.Is(err, ErrUploadFailed):
		response.BadGateway(w, "avatar upload failed, profile unchanged")
	case errors.Is(err, ErrPersistFailed):
		response.BadGateway(w, "avatar stored but profile update failed, retry to reconcile")
	default:
		response.InternalError(w)
	}
}

// decodeImagePayload decodes a base64 payload, tolerating a data URL prefix.
func decodeImagePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		if i := strings.IndexByte(payload, ','); i >= 0 {
			payload = payload[i+1:]
		}
	}
	return base64.StdEncoding.DecodeString(payload)
}
