package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/kenal/service/internal/response"
)

// emailRegex is a permissive sanity check; the mailbox is never verified here.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 8

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	Email    string `json:"email"    example:"budi@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type sessionData struct {
	Token string `json:"token" example:"eyJhbGci..."`
	User  User   `json:"user"`
}

// Register godoc
//
//	@Summary		Register new account
//	@Description	Create an account with email and password. An empty profile is provisioned in the same transaction. Issues a JWT on success.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Registration credentials"
//	@Success		201		{object}	response.Envelope{data=sessionData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrEmailTaken) {
		response.FieldError(w, http.StatusConflict, "email", "email is already registered")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

// Login godoc
//
//	@Summary		Log in
//	@Description	Verify email and password, and issue a JWT on success.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		credentialsRequest	true	"Login credentials"
//	@Success		200		{object}	response.Envelope{data=sessionData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"token": token,
		"user":  u,
	})
}

// decodeCredentials parses and sanity-checks the shared request shape,
// writing the error response itself when the input is unusable.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return req, false
	}
	if !emailRegex.MatchString(req.Email) {
		response.FieldError(w, http.StatusBadRequest, "email", "invalid email address")
		return req, false
	}
	if len(req.Password) < minPasswordLen {
		response.FieldError(w, http.StatusBadRequest, "password", "password must be at least 8 characters")
		return req, false
	}
	return req, true
}
