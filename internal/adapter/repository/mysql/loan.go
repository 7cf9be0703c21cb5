package mysql

import (
	"context"
	"errors"

	loanDomain "loanledger/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

// payments preload in insertion order = chronological entry order
func paymentOrder(db *gorm.DB) *gorm.DB { return db.Order("payments.id ASC") }

func (r *LoanRepository) withPayments(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Payments", paymentOrder)
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// Save persists the loan row only; the payments table is append-only and is
// never rewritten through the association.
func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.withPayments(ctx).Where("loan_id = ?", loanID).First(&out)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, loanDomain.ErrNotFound
		}
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, loanDomain.ErrNotFound
		}
		return nil, res.Error
	}
	return &out, nil
}

func (r *LoanRepository) ListAll(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.withPayments(ctx).Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByAssignee(ctx context.Context, email string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.withPayments(ctx).
		Where("assigned_to = ?", email).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) AppendPayment(ctx context.Context, loanRef uint64, p *loanDomain.Payment) error {
	p.LoanRef = loanRef
	return r.db.WithContext(ctx).Create(p).Error
}
