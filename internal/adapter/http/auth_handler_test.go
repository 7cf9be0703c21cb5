package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"loanledger/internal/adapter/middleware"
	"loanledger/internal/auth"
	userDomain "loanledger/internal/domain/user"
	"loanledger/internal/store"
	"loanledger/internal/testutil/loanmock"
	"loanledger/internal/testutil/uowmock"
	"loanledger/internal/testutil/usermock"
)

func newAuthHandler(users userDomain.Repository) (*AuthHandler, *store.Manager, *auth.Manager) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := store.NewManager(users, &loanmock.Repo{}, &uowmock.UoW{}, testAdminEmail, log)
	tokens := auth.NewManager("test-secret", time.Hour)
	return NewAuthHandler(sessions, tokens), sessions, tokens
}

func TestLogin_FirstSignInProvisionsAdmin(t *testing.T) {
	e := newEchoWithValidator()

	var created *userDomain.User
	users := &usermock.Repo{
		CreateFn: func(ctx context.Context, u *userDomain.User) error {
			created = u
			return nil
		},
	}
	h, sessions, tokens := newAuthHandler(users)

	body := mustJSON(t, map[string]any{
		"uid": "admin-uid", "email": testAdminEmail, "name": "Admin",
	})
	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("code = %d, want 200 (body=%s)", rec.Code, rec.Body.String())
	}

	var resp loginResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	if !resp.User.IsAdmin {
		t.Fatal("admin email must provision an admin user")
	}
	if created == nil || !created.IsAdmin {
		t.Fatalf("provisioned record not admin: %+v", created)
	}

	// the token binds to a live session
	claims, err := tokens.VerifyAccessToken(resp.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, ok := sessions.Session(claims.UID); !ok {
		t.Fatal("no live session for issued token")
	}
}

func TestLogin_ExistingUserLoadedUnchanged(t *testing.T) {
	e := newEchoWithValidator()

	users := &usermock.Repo{
		GetByUIDFn: func(ctx context.Context, uid string) (*userDomain.User, error) {
			return &userDomain.User{UID: uid, Email: "b@example.com", Name: "Stored Name"}, nil
		},
		CreateFn: func(ctx context.Context, u *userDomain.User) error {
			t.Fatal("existing user must not be re-created")
			return nil
		},
	}
	h, _, _ := newAuthHandler(users)

	body := mustJSON(t, map[string]any{
		"uid": "b-uid", "email": "b@example.com", "name": "Fresh Name",
	})
	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	var resp loginResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.Name != "Stored Name" {
		t.Fatalf("Name = %q, want stored profile untouched", resp.User.Name)
	}
	if resp.User.IsAdmin {
		t.Fatal("non-admin email became admin")
	}
}

func TestLogin_RejectsBadPayload(t *testing.T) {
	e := newEchoWithValidator()
	h, _, _ := newAuthHandler(&usermock.Repo{})

	body := mustJSON(t, map[string]any{"uid": "x", "email": "not-an-email", "name": "N"})
	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("code = %d, want 422", rec.Code)
	}
}

func TestLogout_DropsSession(t *testing.T) {
	e := newEchoWithValidator()
	h, sessions, _ := newAuthHandler(&usermock.Repo{})

	_, _, err := sessions.SignIn(context.Background(), auth.Identity{UID: "u1", Email: "u@example.com", Name: "U"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	req := httptest.NewRequest(stdhttp.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetSession(c, nil, &auth.Claims{UID: "u1"})

	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if rec.Code != stdhttp.StatusNoContent {
		t.Fatalf("code = %d, want 204", rec.Code)
	}
	if _, ok := sessions.Session("u1"); ok {
		t.Fatal("session survived logout")
	}
}
