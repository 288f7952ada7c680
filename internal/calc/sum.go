// Package calc implements the budgeting metrics engine: tabular aggregation,
// the per-debt amortization evaluator, and the combined metrics computation.
// Everything here is a pure function over snapshot data; nothing errors on
// bad input and nothing retains state between calls.
package calc

import (
	"math"

	"pfdash/internal/core"
)

// Sum adds the selected field across rows. A nil or empty collection sums to
// 0, and degenerate values (NaN, ±Inf) contribute 0 rather than poisoning the
// total.
func Sum[T any](rows []T, amount func(T) float64) float64 {
	total := 0.0
	for _, r := range rows {
		v := amount(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total += v
	}
	return total
}

// SumByKeywords adds the amounts of rows whose normalized name contains any
// of the given lowercase substrings.
func SumByKeywords[T any](rows []T, name func(T) string, amount func(T) float64, keywords []string) float64 {
	total := 0.0
	for _, r := range rows {
		if !core.IsEssentialName(name(r), keywords) {
			continue
		}
		v := amount(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		total += v
	}
	return total
}

func sumIncome(rows []core.IncomeRow) float64 {
	return Sum(rows, func(r core.IncomeRow) float64 { return r.MonthlyAmount })
}

func sumExpenses(rows []core.ExpenseRow) float64 {
	return Sum(rows, func(r core.ExpenseRow) float64 { return r.MonthlyAmount })
}

func sumContributions(rows []core.ContributionRow) float64 {
	return Sum(rows, func(r core.ContributionRow) float64 { return r.MonthlyAmount })
}

func sumBalances(rows []core.BalanceRow) float64 {
	return Sum(rows, func(r core.BalanceRow) float64 { return r.Value })
}
