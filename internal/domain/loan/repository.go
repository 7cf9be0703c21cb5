package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the loan row; only valid inside a transaction.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	ListAll(ctx context.Context) ([]Loan, error)
	ListByAssignee(ctx context.Context, email string) ([]Loan, error)
	// AppendPayment inserts a single payment row for the loan. The insert is
	// atomic, so concurrent appends cannot lose each other.
	AppendPayment(ctx context.Context, loanRef uint64, p *Payment) error
}
