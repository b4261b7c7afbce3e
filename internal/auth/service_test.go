package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shapeflow/shapeflow/backend-go/internal/db"
)

func newTestService() *Service {
	return NewService(db.NewMemory(), "test-secret")
}

func TestRegisterLogin(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	res, err := s.Register(ctx, "ann", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(res.Player.ID, "player_") || res.Player.Username != "ann" || res.Player.Guest {
		t.Errorf("player %+v", res.Player)
	}

	id, err := s.ValidateToken(res.Token)
	if err != nil || id != res.Player.ID {
		t.Errorf("token subject %q %v, want %q", id, err, res.Player.ID)
	}

	if _, err := s.Register(ctx, "ANN", "password456"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate register err %v, want ErrUsernameTaken", err)
	}

	if _, err := s.Login(ctx, "ann", "password123"); err != nil {
		t.Errorf("login: %v", err)
	}
	if _, err := s.Login(ctx, "ann", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user err %v, want ErrInvalidCredentials", err)
	}
}

func TestGuest(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	res, err := s.Guest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Player.Guest || !strings.HasPrefix(res.Player.Username, "Player-") || len(res.Player.Username) != len("Player-")+8 {
		t.Errorf("guest %+v", res.Player)
	}
	if _, err := s.Login(ctx, res.Player.Username, ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("guest login err %v, want ErrInvalidCredentials", err)
	}

	name, err := s.DisplayName(ctx, res.Player.ID)
	if err != nil || name != res.Player.Username {
		t.Errorf("display name %q %v", name, err)
	}
	if _, err := s.DisplayName(ctx, "player_missing"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("missing player err %v", err)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	s := newTestService()
	res, err := s.Guest(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	other := NewService(db.NewMemory(), "other-secret")
	if _, err := other.ValidateToken(res.Token); err == nil {
		t.Error("token signed with another secret accepted")
	}

	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, err := s.ValidateToken(res.Token); err == nil {
		t.Error("expired token accepted")
	}
	if _, err := s.ValidateToken("garbage"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestService()
	res, _ := s.Guest(context.Background())

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = PlayerIDFromContext(r.Context())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"bad format", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"valid", "Bearer " + res.Token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.AuthMiddleware(next).ServeHTTP(rec, req)
			if rec.Code != tt.status {
				t.Errorf("status %d, want %d", rec.Code, tt.status)
			}
			if tt.status == http.StatusOK && seen != res.Player.ID {
				t.Errorf("player id %q, want %q", seen, res.Player.ID)
			}
		})
	}

	t.Run("preflight", func(t *testing.T) {
		called := false
		h := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusNoContent)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/save-progress", nil))
		if !called || rec.Code != http.StatusNoContent {
			t.Errorf("preflight called %v status %d, want passed through", called, rec.Code)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	s := newTestService()
	res, _ := s.Guest(context.Background())

	var seen string
	called := false
	h := s.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = PlayerIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/user-profile", nil)
	req.Header.Set("Authorization", "Bearer nope")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !called || seen != "" {
		t.Errorf("invalid token: called %v player %q", called, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/user-profile", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != res.Player.ID {
		t.Errorf("player %q, want %q", seen, res.Player.ID)
	}
}

func TestHandler_Register(t *testing.T) {
	h := NewHandler(newTestService())

	tests := []struct {
		body   string
		status int
	}{
		{`{"username":"ann","password":"password123"}`, http.StatusCreated},
		{`{"username":"ann","password":"password123"}`, http.StatusConflict},
		{`{"username":"bob","password":"short"}`, http.StatusBadRequest},
		{`{"username":"  ","password":"password123"}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body)))
		if rec.Code != tt.status {
			t.Errorf("register %s: status %d, want %d", tt.body, rec.Code, tt.status)
		}
	}

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ann","password":"bad-password"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("login status %d, want 401", rec.Code)
	}
}
