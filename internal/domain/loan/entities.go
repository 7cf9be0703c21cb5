package loan

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ValidTarget reports whether s is a status an administrator may move a
// pending loan to.
func ValidTarget(s Status) bool {
	return s == StatusApproved || s == StatusRejected
}

type Loan struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanID          string         `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	Description     string         `gorm:"type:text" json:"description"`
	Amount          float64        `gorm:"type:decimal(18,2)" json:"amount"`
	InterestRate    float64        `gorm:"type:decimal(6,4)" json:"interest_rate"`
	AssignedTo      string         `gorm:"size:255;index:idx_loans_assigned_active" json:"assigned_to"`
	StartDate       time.Time      `json:"start_date"`
	Status          Status         `gorm:"type:enum('pending','approved','rejected');default:'pending'" json:"status"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	Payments        []Payment      `gorm:"foreignKey:LoanRef;references:ID" json:"payments"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// EffectiveStatus maps an empty status to approved: rows written before the
// status column existed carry no value and were always live loans.
func (l *Loan) EffectiveStatus() Status {
	if l.Status == "" {
		return StatusApproved
	}
	return l.Status
}

// Payment is append-only: rows are inserted, never updated or deleted.
// Insertion order (the numeric PK) is the chronological entry order.
type Payment struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	PaymentID string    `gorm:"size:32;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	LoanRef   uint64    `gorm:"column:loan_ref;index:idx_payments_loan_ref" json:"-"`
	Amount    float64   `gorm:"type:decimal(18,2)" json:"amount"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Payment) TableName() string { return "payments" }
