// Package store holds the per-user session state: the signed-in user plus
// cached copies of the user and loan collections. A Session is the only
// component that talks to the repositories, and it is where role checks are
// enforced — the HTTP layer hiding controls is a courtesy, not the boundary.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"loanledger/internal/auth"
	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/uow"
	"loanledger/internal/domain/user"
	"loanledger/pkg/id"
)

type Session struct {
	mu      sync.RWMutex
	current *user.User
	users   []user.User
	loans   []loan.Loan

	usersRepo  user.Repository
	loansRepo  loan.Repository
	tx         uow.UnitOfWork
	adminEmail string
	log        *slog.Logger
}

func NewSession(users user.Repository, loans loan.Repository, tx uow.UnitOfWork, adminEmail string, log *slog.Logger) *Session {
	return &Session{
		usersRepo:  users,
		loansRepo:  loans,
		tx:         tx,
		adminEmail: adminEmail,
		log:        log,
	}
}

type CreateLoanInput struct {
	Description  string
	Amount       float64
	InterestRate float64
	AssignedTo   string
	StartDate    time.Time
}

func (in *CreateLoanInput) validate() error {
	if in.Amount <= 0 || in.InterestRate <= 0 || in.AssignedTo == "" {
		return loan.ErrInvalidInput
	}
	return nil
}

// SetUser replaces the session's current user. Synchronous, no I/O.
func (s *Session) SetUser(u *user.User) {
	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
}

func (s *Session) CurrentUser() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// Users returns a copy of the cached user collection.
func (s *Session) Users() []user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out
}

// Loans returns a copy of the cached loan collection.
func (s *Session) Loans() []loan.Loan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]loan.Loan, len(s.loans))
	copy(out, s.loans)
	return out
}

// LoanByID looks the loan up in the cache, not the database.
func (s *Session) LoanByID(loanID string) (loan.Loan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.loans {
		if l.LoanID == loanID {
			return l, true
		}
	}
	return loan.Loan{}, false
}

// SignIn handles an identity-change event from the sign-in provider. On first
// observation of a uid it provisions the User record: IsAdmin is decided by
// comparing the email with the configured administrator address, CreatedAt is
// stamped once. Later observations load the existing record unchanged.
func (s *Session) SignIn(ctx context.Context, ident auth.Identity) (*user.User, error) {
	u, err := s.usersRepo.GetByUID(ctx, ident.UID)
	switch {
	case err == nil:
		// existing user: session attachment only
	case isNotFound(err):
		u = &user.User{
			UID:       ident.UID,
			Email:     ident.Email,
			Name:      ident.Name,
			PhotoURL:  ident.PhotoURL,
			IsAdmin:   ident.Email == s.adminEmail,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.usersRepo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("provision user: %w", err)
		}
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}

	s.SetUser(u)
	return u, nil
}

// SignOut handles the signed-out identity-change event.
func (s *Session) SignOut() {
	s.SetUser(nil)
}

// AddLoan writes a new loan that is live immediately. Administrator only.
func (s *Session) AddLoan(ctx context.Context, in CreateLoanInput) (*loan.Loan, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	l := newLoanFrom(in)
	l.Status = loan.StatusApproved

	if err := s.loansRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("add loan: %w", err)
	}
	s.refreshLoans(ctx)
	return l, nil
}

// RequestLoan writes a new loan awaiting approval. The result is pending with
// no payments regardless of input. Available to any signed-in borrower; a
// request without an assignee defaults to the requester.
func (s *Session) RequestLoan(ctx context.Context, in CreateLoanInput) (*loan.Loan, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if in.AssignedTo == "" {
		in.AssignedTo = u.Email
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	l := newLoanFrom(in)
	l.Status = loan.StatusPending

	if err := s.loansRepo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("request loan: %w", err)
	}
	s.refreshLoans(ctx)
	return l, nil
}

// AddPayment appends a payment to a loan in the current cache. Administrator
// only. The payment date is the time of entry and is immutable afterwards.
func (s *Session) AddPayment(ctx context.Context, loanID string, amount float64) (*loan.Payment, error) {
	if _, err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, loan.ErrInvalidInput
	}

	cached, ok := s.LoanByID(loanID)
	if !ok {
		return nil, loan.ErrNotFound
	}

	p := &loan.Payment{
		PaymentID: id.NewID32(),
		LoanRef:   cached.ID,
		Amount:    amount,
		Date:      time.Now().UTC(),
	}
	if err := s.loansRepo.AppendPayment(ctx, cached.ID, p); err != nil {
		return nil, fmt.Errorf("add payment: %w", err)
	}
	s.refreshLoans(ctx)
	return p, nil
}

// UpdateLoanStatus moves a pending loan to approved or rejected.
// Administrator only. The transition runs under a row lock so two
// administrators cannot race each other past the pending guard.
func (s *Session) UpdateLoanStatus(ctx context.Context, loanID string, status loan.Status) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	if !loan.ValidTarget(status) {
		return loan.ErrInvalidStatus
	}

	err := s.tx.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if l.EffectiveStatus() != loan.StatusPending {
			return loan.ErrInvalidTransition
		}
		l.Status = status
		l.StatusUpdatedAt = time.Now().UTC()
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return err
	}
	s.refreshLoans(ctx)
	return nil
}

// FetchUsers replaces the cached user collection with the full remote set.
// Administrator only.
func (s *Session) FetchUsers(ctx context.Context) error {
	if _, err := s.requireAdmin(); err != nil {
		return err
	}
	users, err := s.usersRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return nil
}

// FetchLoans replaces the cached loan collection: the full set for an
// administrator, otherwise only loans assigned to the current user's email.
func (s *Session) FetchLoans(ctx context.Context) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}

	var loans []loan.Loan
	if u.IsAdmin {
		loans, err = s.loansRepo.ListAll(ctx)
	} else {
		loans, err = s.loansRepo.ListByAssignee(ctx, u.Email)
	}
	if err != nil {
		return fmt.Errorf("fetch loans: %w", err)
	}

	s.mu.Lock()
	s.loans = loans
	s.mu.Unlock()
	return nil
}

// FetchLoansByUser loads the loan collection as seen by the given user. The
// role is re-derived from the store rather than the session cache, so a stale
// admin flag cannot widen visibility. Non-administrators may only view
// themselves.
func (s *Session) FetchLoansByUser(ctx context.Context, uid string) error {
	cur, err := s.requireUser()
	if err != nil {
		return err
	}
	if !cur.IsAdmin && cur.UID != uid {
		return ErrUnauthorized
	}

	target, err := s.usersRepo.GetByUID(ctx, uid)
	if err != nil {
		if isNotFound(err) {
			return user.ErrNotFound
		}
		return fmt.Errorf("resolve user: %w", err)
	}

	var loans []loan.Loan
	if target.IsAdmin {
		loans, err = s.loansRepo.ListAll(ctx)
	} else {
		loans, err = s.loansRepo.ListByAssignee(ctx, target.Email)
	}
	if err != nil {
		return fmt.Errorf("fetch loans for %s: %w", uid, err)
	}

	s.mu.Lock()
	s.loans = loans
	s.mu.Unlock()
	return nil
}

func (s *Session) requireUser() (*user.User, error) {
	u := s.CurrentUser()
	if u == nil {
		return nil, ErrNotSignedIn
	}
	return u, nil
}

func (s *Session) requireAdmin() (*user.User, error) {
	u, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if !u.IsAdmin {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// refreshLoans re-fetches the loan collection after a committed mutation.
// A refresh failure keeps the last-known-good cache; the write itself
// already succeeded, so the mutation is not failed retroactively.
func (s *Session) refreshLoans(ctx context.Context) {
	if err := s.FetchLoans(ctx); err != nil {
		s.log.Warn("loan cache refresh failed", "err", err)
	}
}

func newLoanFrom(in CreateLoanInput) *loan.Loan {
	start := in.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &loan.Loan{
		LoanID:          id.NewID32(),
		Description:     in.Description,
		Amount:          in.Amount,
		InterestRate:    in.InterestRate,
		AssignedTo:      in.AssignedTo,
		StartDate:       start,
		StatusUpdatedAt: time.Now().UTC(),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, user.ErrNotFound)
}
