package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kenal/service/internal/response"
)

// Input validation happens before the service is touched, so these run with
// a nil service.
func TestCredentialValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"email":`, ""},
		{"invalid email", `{"email":"not-an-email","password":"longenough1"}`, "email"},
		{"short password", `{"email":"budi@example.com","password":"short"}`, "password"},
	}
	h := NewHandler(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, endpoint := range []http.HandlerFunc{h.Register, h.Login} {
				req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))
				rec := httptest.NewRecorder()
				endpoint(rec, req)

				require.Equal(t, http.StatusBadRequest, rec.Code)
				var env response.Envelope
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
				require.False(t, env.Success)
				require.Equal(t, tt.field, env.Field)
			}
		})
	}
}
