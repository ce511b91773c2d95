package authenticate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"guestlist/entity"
	"guestlist/lib/api/cont"
)

type fakeAuth struct{}

func (fakeAuth) AuthenticateByToken(_ context.Context, token string) (*entity.User, error) {
	if token == "valid-token" {
		return &entity.User{Username: "desk", Email: "desk@example.com"}, nil
	}
	return nil, fmt.Errorf("token not found")
}

func TestAuthenticate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = cont.GetUser(r.Context()).Username
		w.WriteHeader(http.StatusOK)
	})
	handler := New(logger, fakeAuth{})(next)

	tests := []struct {
		name   string
		header string
		status int
		user   string
	}{
		{name: "valid token", header: "Bearer valid-token", status: http.StatusOK, user: "desk"},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "bearer without token", header: "Bearer", status: http.StatusUnauthorized},
		{name: "bearer with trailing space", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dXNlcg==", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			r := httptest.NewRequest(http.MethodGet, "/v1/checkin/garden-party/stats", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.user != "" && gotUser != tt.user {
				t.Errorf("user in context = %q, want %q", gotUser, tt.user)
			}
		})
	}
}
