package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"loanledger/internal/adapter/middleware"
	"loanledger/internal/domain/user"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler { return &UserHandler{} }

type userResponse struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  string    `json:"photo_url"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		PhotoURL:  u.PhotoURL,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

// ListUsers replaces the session's user cache with the full remote set and
// returns it. Administrator only, enforced by the store.
func (h *UserHandler) ListUsers(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if err := sess.FetchUsers(c.Request().Context()); err != nil {
		return domainError(c, err)
	}

	users := sess.Users()
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}
