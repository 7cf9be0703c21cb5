package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"loanledger/internal/auth"
	"loanledger/internal/store"
	"loanledger/internal/testutil/loanmock"
	"loanledger/internal/testutil/uowmock"
	"loanledger/internal/testutil/usermock"
)

func newAuthFixture(t *testing.T) (*auth.Manager, *store.Manager) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := store.NewManager(&usermock.Repo{}, &loanmock.Repo{}, &uowmock.UoW{}, "admin@example.com", log)
	tokens := auth.NewManager("test-secret", time.Hour)
	return tokens, sessions
}

func runAuthed(t *testing.T, tokens *auth.Manager, sessions *store.Manager, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/loans", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := Auth(tokens, sessions)(func(c echo.Context) error {
		reached = true
		if SessionFrom(c) == nil {
			t.Error("handler ran without a session in context")
		}
		if ClaimsFrom(c) == nil {
			t.Error("handler ran without claims in context")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware chain: %v", err)
	}
	return rec, reached
}

func TestAuth_MissingToken(t *testing.T) {
	tokens, sessions := newAuthFixture(t)
	rec, reached := runAuthed(t, tokens, sessions, "")
	if reached || rec.Code != http.StatusUnauthorized {
		t.Fatalf("reached=%v code=%d, want blocked 401", reached, rec.Code)
	}
}

func TestAuth_GarbageToken(t *testing.T) {
	tokens, sessions := newAuthFixture(t)
	rec, reached := runAuthed(t, tokens, sessions, "Bearer not.a.jwt")
	if reached || rec.Code != http.StatusUnauthorized {
		t.Fatalf("reached=%v code=%d, want blocked 401", reached, rec.Code)
	}
}

func TestAuth_ValidTokenWithoutSession(t *testing.T) {
	tokens, sessions := newAuthFixture(t)
	// token issued but the user never signed in (or signed out since)
	token, err := tokens.IssueAccessToken(auth.Identity{UID: "ghost"}, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec, reached := runAuthed(t, tokens, sessions, "Bearer "+token)
	if reached || rec.Code != http.StatusUnauthorized {
		t.Fatalf("reached=%v code=%d, want blocked 401", reached, rec.Code)
	}
}

func TestAuth_FullRoundTrip(t *testing.T) {
	tokens, sessions := newAuthFixture(t)
	ident := auth.Identity{UID: "u1", Email: "u@example.com", Name: "U"}
	if _, _, err := sessions.SignIn(context.Background(), ident); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	token, err := tokens.IssueAccessToken(ident, false)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec, reached := runAuthed(t, tokens, sessions, "Bearer "+token)
	if !reached || rec.Code != http.StatusOK {
		t.Fatalf("reached=%v code=%d, want handler run with 200", reached, rec.Code)
	}
}
