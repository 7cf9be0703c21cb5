package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/user"
	"loanledger/internal/store"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// domainError maps store/domain errors to HTTP responses.
func domainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrNotSignedIn):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not signed in"})
	case errors.Is(err, store.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "administrator role required"})
	case errors.Is(err, loan.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "loan not found"})
	case errors.Is(err, user.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	case errors.Is(err, loan.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "loan is not pending"})
	case errors.Is(err, loan.ErrInvalidStatus), errors.Is(err, loan.ErrInvalidInput):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
