// Package finance computes the derived financial view of a loan snapshot.
// Everything here is pure: a Summary is a function of the loan fields and the
// supplied instant, with no I/O and no mutation of the input, so it is safe
// to call once per loan per request.
package finance

import (
	"time"

	"loanledger/internal/domain/loan"
)

type Summary struct {
	MonthsElapsed     int     `json:"months_elapsed"`
	TotalInterest     float64 `json:"total_interest"`
	TotalWithInterest float64 `json:"total_with_interest"`
	TotalPaid         float64 `json:"total_paid"`
	Remaining         float64 `json:"remaining"`
	ProgressPercent   float64 `json:"progress_percent"`
}

// MonthsElapsed counts whole calendar months from start to now, plus one so
// the first month's interest accrues on the day the loan starts. Never less
// than 1.
func MonthsElapsed(start, now time.Time) int {
	months := wholeMonthsBetween(start, now) + 1
	if months < 1 {
		return 1
	}
	return months
}

func wholeMonthsBetween(start, now time.Time) int {
	if now.Before(start) {
		return -wholeMonthsBetween(now, start)
	}
	months := (now.Year()-start.Year())*12 + int(now.Month()) - int(start.Month())
	// back off when the last calendar month has not fully elapsed
	if months > 0 && start.AddDate(0, months, 0).After(now) {
		months--
	}
	return months
}

// Summarize evaluates the loan at the given instant. Interest is simple and
// non-compounding: always charged against the original principal, never
// against the declining balance.
func Summarize(l *loan.Loan, now time.Time) Summary {
	months := MonthsElapsed(l.StartDate, now)
	monthlyRate := l.InterestRate / 100
	totalInterest := l.Amount * monthlyRate * float64(months)
	totalWithInterest := l.Amount + totalInterest

	var totalPaid float64
	for _, p := range l.Payments {
		totalPaid += p.Amount
	}

	var progress float64
	if totalWithInterest != 0 {
		progress = totalPaid / totalWithInterest * 100
	}

	return Summary{
		MonthsElapsed:     months,
		TotalInterest:     totalInterest,
		TotalWithInterest: totalWithInterest,
		TotalPaid:         totalPaid,
		Remaining:         totalWithInterest - totalPaid,
		ProgressPercent:   progress,
	}
}
