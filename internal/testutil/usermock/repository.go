package usermock

import (
	"context"

	domain "loanledger/internal/domain/user"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies user.Repository. Fill in the
// function fields a test needs; unfilled lookups report not-found.
type Repo struct {
	CreateFn   func(ctx context.Context, u *domain.User) error
	GetByUIDFn func(ctx context.Context, uid string) (*domain.User, error)
	ListFn     func(ctx context.Context) ([]domain.User, error)
}

func (m *Repo) Create(ctx context.Context, u *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, u)
	}
	return nil
}

func (m *Repo) GetByUID(ctx context.Context, uid string) (*domain.User, error) {
	if m.GetByUIDFn != nil {
		return m.GetByUIDFn(ctx, uid)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context) ([]domain.User, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}
