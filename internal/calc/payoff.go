package calc

import (
	"fmt"
	"math"
)

// PayoffStatus classifies the outcome of a single-debt payoff evaluation.
// These are data, not errors: unpayable debts are reported with a reason
// string for the presentation layer, never raised.
type PayoffStatus string

const (
	StatusPaidOff       PayoffStatus = "paid_off"
	StatusNoPayment     PayoffStatus = "no_payment"
	StatusNonAmortizing PayoffStatus = "non_amortizing"
	StatusTooLong       PayoffStatus = "too_long"
)

// DefaultMaxMonths bounds the amortization loop. 600 months (50 years) is
// the cap beyond which a projection is reported as too_long.
const DefaultMaxMonths = 600

// PayoffEstimate is the result of evaluating one debt. Months and
// TotalInterest are nil when undefined for the status, so callers can render
// a blank instead of a misleading zero. MonthlyInterest is always rate times the
// balance at evaluation start, not the final month's interest; it is shown to
// users as a diagnostic and must not drift.
type PayoffEstimate struct {
	Status               PayoffStatus `json:"status"`
	Months               *int         `json:"months"`
	TotalInterest        *float64     `json:"total_interest"`
	MonthlyInterest      float64      `json:"monthly_interest"`
	MinPaymentToAmortize float64      `json:"min_payment_to_amortize"`
	Reason               string       `json:"reason,omitempty"`
}

// EstimatePayoff simulates month-by-month amortization of a single debt and
// classifies the outcome. Negative inputs are clamped to 0; no input causes
// an error.
func EstimatePayoff(balance, aprPct, payment float64) PayoffEstimate {
	return estimatePayoff(balance, aprPct, payment, DefaultMaxMonths)
}

func estimatePayoff(balance, aprPct, payment float64, maxMonths int) PayoffEstimate {
	balance = nonNegative(balance)
	aprPct = nonNegative(aprPct)
	payment = nonNegative(payment)

	if balance <= 0 {
		return PayoffEstimate{
			Status:        StatusPaidOff,
			Months:        intPtr(0),
			TotalInterest: floatPtr(0),
		}
	}

	monthlyRate := aprPct / 100.0 / 12.0
	monthlyInterest := 0.0
	if monthlyRate > 0 {
		monthlyInterest = balance * monthlyRate
	}

	if payment <= 0 {
		minPayment := 0.0
		if monthlyRate > 0 {
			minPayment = monthlyInterest + 1.0
		}
		return PayoffEstimate{
			Status:               StatusNoPayment,
			MonthlyInterest:      monthlyInterest,
			MinPaymentToAmortize: minPayment,
			Reason:               "No monthly payment entered.",
		}
	}

	// No interest: linear payoff.
	if monthlyRate <= 0 {
		months := int(math.Ceil(balance / payment))
		return PayoffEstimate{
			Status:        StatusPaidOff,
			Months:        intPtr(months),
			TotalInterest: floatPtr(0),
		}
	}

	// Payment at or below the monthly interest means the balance grows or
	// stays flat; the loop would never make progress.
	if payment <= monthlyInterest {
		return PayoffEstimate{
			Status:               StatusNonAmortizing,
			MonthlyInterest:      monthlyInterest,
			MinPaymentToAmortize: monthlyInterest + 1.0,
			Reason:               "Payment is less than (or equal to) monthly interest, so the balance will grow.",
		}
	}

	// Amortize until paid or the cap is hit. Interest is recomputed from the
	// current balance each month; every iteration strictly reduces it.
	months := 0
	totalInterest := 0.0
	b := balance

	for b > 0 && months < maxMonths {
		interest := b * monthlyRate
		principal := payment - interest
		if principal <= 0 {
			// Unreachable given the guard above; kept as a safety net.
			return PayoffEstimate{
				Status:               StatusNonAmortizing,
				MonthlyInterest:      interest,
				MinPaymentToAmortize: interest + 1.0,
				Reason:               "Payment doesn't reduce principal.",
			}
		}
		b -= principal
		totalInterest += interest
		months++
	}

	if b > 0 {
		// Interest accumulated before the cap is still reported for display.
		return PayoffEstimate{
			Status:               StatusTooLong,
			TotalInterest:        floatPtr(totalInterest),
			MonthlyInterest:      monthlyInterest,
			MinPaymentToAmortize: monthlyInterest + 1.0,
			Reason:               fmt.Sprintf("Not paid off within %d months.", maxMonths),
		}
	}

	return PayoffEstimate{
		Status:               StatusPaidOff,
		Months:               intPtr(months),
		TotalInterest:        floatPtr(totalInterest),
		MonthlyInterest:      monthlyInterest,
		MinPaymentToAmortize: monthlyInterest + 1.0,
	}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
