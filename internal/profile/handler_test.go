package profile

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/kenal/service/internal/middleware"
	"github.com/kenal/service/internal/response"
)

func authedRequest(t *testing.T, method, target, body, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestGetProfileReturnsNullWhenAbsent(t *testing.T) {
	h := NewHandler(NewService(newFakeRepo(), &fakeUploader{}))

	rec := httptest.NewRecorder()
	h.GetProfile(rec, authedRequest(t, http.MethodGet, "/users/me", "", uuid.NewString()))

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	require.Nil(t, env.Data)
}

func TestUpdateProfileMapsUsernameConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(uuid.NewString(), strp("budi"), "", nil)
	uid := uuid.NewString()
	repo.seed(uid, nil, "", nil)
	h := NewHandler(NewService(repo, &fakeUploader{}))

	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, authedRequest(t, http.MethodPatch, "/users/me", `{"username":"budi"}`, uid))

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "username", env.Field)
}

func TestUpdateProfileMapsValidationToField(t *testing.T) {
	repo := newFakeRepo()
	uid := uuid.NewString()
	repo.seed(uid, nil, "", nil)
	h := NewHandler(NewService(repo, &fakeUploader{}))

	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, authedRequest(t, http.MethodPatch, "/users/me", `{"username":"ab"}`, uid))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "username", env.Field)
}

func TestUploadAvatarDecodesBase64AndDataURLs(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))
	for _, payload := range []string{encoded, "data:image/jpeg;base64," + encoded} {
		repo := newFakeRepo()
		uid := uuid.NewString()
		repo.seed(uid, nil, "", nil)
		up := &fakeUploader{url: "http://cdn.local/a.jpeg?t=1"}
		h := NewHandler(NewService(repo, up))

		body, err := json.Marshal(map[string]string{"image": payload})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		h.UploadAvatar(rec, authedRequest(t, http.MethodPost, "/users/me/avatar", string(body), uid))

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, up.calls)
	}
}

func TestUploadAvatarRejectsMalformedBase64(t *testing.T) {
	repo := newFakeRepo()
	uid := uuid.NewString()
	repo.seed(uid, nil, "", nil)
	up := &fakeUploader{}
	h := NewHandler(NewService(repo, up))

	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, authedRequest(t, http.MethodPost, "/users/me/avatar", `{"image":"not!!base64"}`, uid))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "image", env.Field)
	require.Zero(t, up.calls)
}

func TestUploadAvatarMapsUploadFailureToBadGateway(t *testing.T) {
	repo := newFakeRepo()
	uid := uuid.NewString()
	repo.seed(uid, nil, "", nil)
	h := NewHandler(NewService(repo, &fakeUploader{err: errors.New("bucket down")}))

	body := `{"image":"` + base64.StdEncoding.EncodeToString([]byte("img")) + `"}`
	rec := httptest.NewRecorder()
	h.UploadAvatar(rec, authedRequest(t, http.MethodPost, "/users/me/avatar", body, uid))

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCheckUsernameEndpoint(t *testing.T) {
	repo := newFakeRepo()
	repo.seed(uuid.NewString(), strp("budi"), "", nil)
	h := NewHandler(NewService(repo, &fakeUploader{}))

	rec := httptest.NewRecorder()
	h.CheckUsername(rec, authedRequest(t, http.MethodGet, "/users/username-check?username=budi", "", uuid.NewString()))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, false, data["available"])

	rec = httptest.NewRecorder()
	h.CheckUsername(rec, authedRequest(t, http.MethodGet, "/users/username-check?username=fresh", "", uuid.NewString()))
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	data, ok = env.Data.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, true, data["available"])
}

func TestMissingAuthContextIsUnauthorized(t *testing.T) {
	h := NewHandler(NewService(newFakeRepo(), &fakeUploader{}))

	rec := httptest.NewRecorder()
	h.GetProfile(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
