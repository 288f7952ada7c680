package calc

import (
	"math"
	"sort"

	"pfdash/internal/core"
)

// Strategy selects a debt payoff prioritization order.
type Strategy string

const (
	// StrategyAvalanche targets the highest APR first (least total interest).
	StrategyAvalanche Strategy = "avalanche"
	// StrategySnowball targets the smallest balance first (quick wins).
	StrategySnowball Strategy = "snowball"
)

// PayoffOrder returns the debts carrying a balance, sorted by the given
// strategy. The input slice is not modified. Ties keep insertion order.
func PayoffOrder(debts []core.DebtRow, strategy Strategy) []core.DebtRow {
	out := make([]core.DebtRow, 0, len(debts))
	for _, d := range debts {
		if d.Balance > 0 {
			out = append(out, d)
		}
	}
	switch strategy {
	case StrategySnowball:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Balance < out[j].Balance })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].APRPercent > out[j].APRPercent })
	}
	return out
}

// StrategyPlan summarizes a rollover payoff simulation: minimums on every
// debt plus the whole freed-up budget thrown at the strategy's current
// target.
type StrategyPlan struct {
	Strategy          Strategy `json:"strategy"`
	Feasible          bool     `json:"feasible"`
	Reason            string   `json:"reason,omitempty"`
	MonthsToPayoff    int      `json:"months_to_payoff"`
	TotalInterestPaid float64  `json:"total_interest_paid"`
}

// StrategyComparison puts the two plans side by side.
type StrategyComparison struct {
	Snowball      StrategyPlan `json:"snowball"`
	Avalanche     StrategyPlan `json:"avalanche"`
	InterestSaved float64      `json:"interest_saved"`
	MonthsSaved   int          `json:"months_saved"`
}

// PlanStrategy simulates paying all debts with a fixed monthly budget:
// every debt gets its minimum payment, the remainder goes to the strategy's
// priority target, and a paid-off debt's budget rolls into the next target.
// The plan is infeasible when the budget doesn't cover the minimums or when
// any single debt can never amortize; the simulation is capped at
// DefaultMaxMonths.
func PlanStrategy(debts []core.DebtRow, monthlyBudget float64, strategy Strategy) StrategyPlan {
	plan := StrategyPlan{Strategy: strategy}

	ordered := PayoffOrder(debts, strategy)
	if len(ordered) == 0 {
		plan.Feasible = true
		return plan
	}

	minimums := 0.0
	for _, d := range ordered {
		minimums += d.MonthlyPayment
	}
	if monthlyBudget < minimums {
		plan.Reason = "Monthly budget doesn't cover the minimum payments."
		return plan
	}

	balances := make([]float64, len(ordered))
	for i, d := range ordered {
		balances[i] = d.Balance
	}

	months := 0
	totalInterest := 0.0

	for months < DefaultMaxMonths {
		if allZero(balances) {
			plan.Feasible = true
			plan.MonthsToPayoff = months
			plan.TotalInterestPaid = roundCents(totalInterest)
			return plan
		}
		months++

		// Accrue a month of interest on every open balance.
		for i, d := range ordered {
			if balances[i] <= 0 {
				continue
			}
			interest := balances[i] * d.APRPercent / 100.0 / 12.0
			balances[i] += interest
			totalInterest += interest
		}

		// Minimums first, extra to the first open debt in strategy order.
		available := monthlyBudget
		for i, d := range ordered {
			if balances[i] <= 0 {
				continue
			}
			pay := math.Min(d.MonthlyPayment, balances[i])
			pay = math.Min(pay, available)
			balances[i] -= pay
			available -= pay
		}
		for i := range ordered {
			if available <= 0 {
				break
			}
			if balances[i] <= 0 {
				continue
			}
			pay := math.Min(available, balances[i])
			balances[i] -= pay
			available -= pay
		}
	}

	if allZero(balances) {
		plan.Feasible = true
		plan.MonthsToPayoff = months
		plan.TotalInterestPaid = roundCents(totalInterest)
		return plan
	}

	plan.Reason = "Debts are not paid off within the projection cap."
	return plan
}

// CompareStrategies runs both plans against the same budget and reports what
// the avalanche order saves over the snowball order.
func CompareStrategies(debts []core.DebtRow, monthlyBudget float64) StrategyComparison {
	cmp := StrategyComparison{
		Snowball:  PlanStrategy(debts, monthlyBudget, StrategySnowball),
		Avalanche: PlanStrategy(debts, monthlyBudget, StrategyAvalanche),
	}
	if cmp.Snowball.Feasible && cmp.Avalanche.Feasible {
		cmp.InterestSaved = roundCents(math.Max(0, cmp.Snowball.TotalInterestPaid-cmp.Avalanche.TotalInterestPaid))
		cmp.MonthsSaved = cmp.Snowball.MonthsToPayoff - cmp.Avalanche.MonthsToPayoff
	}
	return cmp
}

func allZero(balances []float64) bool {
	for _, b := range balances {
		if b > 0 {
			return false
		}
	}
	return true
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
