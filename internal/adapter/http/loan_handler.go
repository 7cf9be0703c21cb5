package http

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"loanledger/internal/adapter/middleware"
	"loanledger/internal/domain/loan"
	"loanledger/internal/finance"
	"loanledger/internal/store"
)

type LoanHandler struct{}

func NewLoanHandler() *LoanHandler { return &LoanHandler{} }

type paymentResponse struct {
	PaymentID string    `json:"payment_id"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
}

type loanResponse struct {
	LoanID       string            `json:"loan_id"`
	Description  string            `json:"description"`
	Amount       float64           `json:"amount"`
	InterestRate float64           `json:"interest_rate"`
	AssignedTo   string            `json:"assigned_to"`
	StartDate    time.Time         `json:"start_date"`
	Status       loan.Status       `json:"status"`
	Payments     []paymentResponse `json:"payments"`
	Summary      finance.Summary   `json:"summary"`
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// displaySummary applies two-decimal display rounding. The model itself
// never rounds; this is the presentation boundary.
func displaySummary(s finance.Summary) finance.Summary {
	s.TotalInterest = round2(s.TotalInterest)
	s.TotalWithInterest = round2(s.TotalWithInterest)
	s.TotalPaid = round2(s.TotalPaid)
	s.Remaining = round2(s.Remaining)
	s.ProgressPercent = round2(s.ProgressPercent)
	return s
}

func toLoanResponse(l loan.Loan, now time.Time) loanResponse {
	payments := make([]paymentResponse, 0, len(l.Payments))
	for _, p := range l.Payments {
		payments = append(payments, paymentResponse{PaymentID: p.PaymentID, Amount: p.Amount, Date: p.Date})
	}
	return loanResponse{
		LoanID:       l.LoanID,
		Description:  l.Description,
		Amount:       l.Amount,
		InterestRate: l.InterestRate,
		AssignedTo:   l.AssignedTo,
		StartDate:    l.StartDate,
		Status:       l.EffectiveStatus(),
		Payments:     payments,
		Summary:      displaySummary(finance.Summarize(&l, now)),
	}
}

func toLoanResponses(loans []loan.Loan) []loanResponse {
	now := time.Now().UTC()
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toLoanResponse(l, now))
	}
	return out
}

// ListLoans refreshes and returns the loan collection for the current role:
// everything for an administrator, own loans for a borrower.
func (h *LoanHandler) ListLoans(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if err := sess.FetchLoans(c.Request().Context()); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toLoanResponses(sess.Loans()))
}

// GetLoan returns a single loan from the role-filtered collection; loans
// outside the caller's visibility read as not found.
func (h *LoanHandler) GetLoan(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if err := sess.FetchLoans(c.Request().Context()); err != nil {
		return domainError(c, err)
	}
	l, ok := sess.LoanByID(c.Param("loan_id"))
	if !ok {
		return domainError(c, loan.ErrNotFound)
	}
	return c.JSON(http.StatusOK, toLoanResponse(l, time.Now().UTC()))
}

// ListUserLoans returns the loan collection as the given user sees it; the
// target's role is re-derived from the store, not the session cache.
func (h *LoanHandler) ListUserLoans(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	if err := sess.FetchLoansByUser(c.Request().Context(), c.Param("uid")); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, toLoanResponses(sess.Loans()))
}

type createLoanReq struct {
	Description  string  `json:"description"   validate:"required"`
	Amount       float64 `json:"amount"        validate:"required,gt=0,dec2"`
	InterestRate float64 `json:"interest_rate" validate:"required,gt=0"`
	AssignedTo   string  `json:"assigned_to"   validate:"required,email"`
	StartDate    string  `json:"start_date"    validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

func (r *createLoanReq) toInput() store.CreateLoanInput {
	in := store.CreateLoanInput{
		Description:  r.Description,
		Amount:       r.Amount,
		InterestRate: r.InterestRate,
		AssignedTo:   r.AssignedTo,
	}
	if r.StartDate != "" {
		// format already validated
		in.StartDate, _ = time.Parse(time.RFC3339, r.StartDate)
	}
	return in
}

// CreateLoan writes a loan that is live immediately. Administrator only.
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	sess := middleware.SessionFrom(c)
	l, err := sess.AddLoan(c.Request().Context(), req.toInput())
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toLoanResponse(*l, time.Now().UTC()))
}

type requestLoanReq struct {
	Description  string  `json:"description"   validate:"required"`
	Amount       float64 `json:"amount"        validate:"required,gt=0,dec2"`
	InterestRate float64 `json:"interest_rate" validate:"required,gt=0"`
	AssignedTo   string  `json:"assigned_to"   validate:"omitempty,email"`
}

// RequestLoan files a borrower's loan request: the result is always pending
// with no payments, whatever the input.
func (h *LoanHandler) RequestLoan(c echo.Context) error {
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	sess := middleware.SessionFrom(c)
	l, err := sess.RequestLoan(c.Request().Context(), store.CreateLoanInput{
		Description:  req.Description,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		AssignedTo:   req.AssignedTo,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, toLoanResponse(*l, time.Now().UTC()))
}

type addPaymentReq struct {
	Amount float64 `json:"amount" validate:"required,gt=0,dec2"`
}

// AddPayment appends a payment to a loan. Administrator only.
func (h *LoanHandler) AddPayment(c echo.Context) error {
	var req addPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	sess := middleware.SessionFrom(c)
	p, err := sess.AddPayment(c.Request().Context(), c.Param("loan_id"), req.Amount)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, paymentResponse{PaymentID: p.PaymentID, Amount: p.Amount, Date: p.Date})
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// UpdateStatus approves or rejects a pending loan. Administrator only.
func (h *LoanHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	loanID := c.Param("loan_id")
	sess := middleware.SessionFrom(c)
	if err := sess.UpdateLoanStatus(c.Request().Context(), loanID, loan.Status(req.Status)); err != nil {
		return domainError(c, err)
	}

	if l, ok := sess.LoanByID(loanID); ok {
		return c.JSON(http.StatusOK, toLoanResponse(l, time.Now().UTC()))
	}
	// a rejected loan may drop out of a borrower-filtered cache
	return c.JSON(http.StatusOK, map[string]string{"loan_id": loanID, "status": req.Status})
}
