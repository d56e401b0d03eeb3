package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]string

func (s stubVerifier) Verify(token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", errors.New("bad token")
	}
	return id, nil
}

func TestAuthenticate(t *testing.T) {
	verifier := stubVerifier{"good": "user-1", "blank": ""}

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Authenticate(verifier)(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusNoContent, wantUser: "user-1"},
		{name: "lowercase scheme", header: "bearer good", wantStatus: http.StatusNoContent, wantUser: "user-1"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer forged", wantStatus: http.StatusUnauthorized},
		{name: "token without user", header: "Bearer blank", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/expenses", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantUser, gotUserID)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"not authorized"}`, w.Body.String())
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)

	id, ok := UserIDFromContext(WithUserID(req.Context(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
