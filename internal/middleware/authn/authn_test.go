package authn

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"linker_auth/internal/auth"
	"linker_auth/internal/models"

	"github.com/stretchr/testify/assert"
)

type fakeIdentifier struct {
	user models.User
	err  error
}

func (f fakeIdentifier) Identify(_ context.Context, token string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	if token != "good" {
		return models.User{}, auth.ErrUnauthorized
	}
	return f.user, nil
}

func TestBearer(t *testing.T) {
	alice := models.User{ID: 7, Username: "alice"}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(user.Username))
	})

	tests := []struct {
		name     string
		id       fakeIdentifier
		header   string
		wantCode int
		wantBody string
	}{
		{name: "ok", id: fakeIdentifier{user: alice}, header: "Bearer good", wantCode: http.StatusOK, wantBody: "alice"},
		{name: "lowercase scheme", id: fakeIdentifier{user: alice}, header: "bearer good", wantCode: http.StatusOK, wantBody: "alice"},
		{name: "missing header", id: fakeIdentifier{user: alice}, wantCode: http.StatusUnauthorized},
		{name: "basic scheme", id: fakeIdentifier{user: alice}, header: "Basic good", wantCode: http.StatusUnauthorized},
		{name: "empty token", id: fakeIdentifier{user: alice}, header: "Bearer ", wantCode: http.StatusUnauthorized},
		{name: "rejected token", id: fakeIdentifier{user: alice}, header: "Bearer bad", wantCode: http.StatusUnauthorized},
		{name: "store failure", id: fakeIdentifier{err: errors.New("db down")}, header: "Bearer good", wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Bearer(slog.New(slog.NewTextHandler(io.Discard, nil)), tt.id)(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
