package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"loanledger/internal/adapter/middleware"
	"loanledger/internal/auth"
	"loanledger/internal/store"
)

type AuthHandler struct {
	sessions *store.Manager
	tokens   *auth.Manager
}

func NewAuthHandler(sessions *store.Manager, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens}
}

type loginReq struct {
	UID      string `json:"uid"       validate:"required"`
	Email    string `json:"email"     validate:"required,email"`
	Name     string `json:"name"      validate:"required"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
}

type loginResp struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Login handles the signed-in identity event from the federated provider:
// first sign-in provisions the user record, later sign-ins load it unchanged.
// The returned token binds subsequent requests to the session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	ident := auth.Identity{UID: req.UID, Email: req.Email, Name: req.Name, PhotoURL: req.PhotoURL}
	_, u, err := h.sessions.SignIn(c.Request().Context(), ident)
	if err != nil {
		return domainError(c, err)
	}

	token, err := h.tokens.IssueAccessToken(ident, u.IsAdmin)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, loginResp{Token: token, User: toUserResponse(*u)})
}

// Logout handles the signed-out identity event and drops the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.ClaimsFrom(c)
	if claims != nil {
		h.sessions.SignOut(claims.UID)
	}
	return c.NoContent(http.StatusNoContent)
}
