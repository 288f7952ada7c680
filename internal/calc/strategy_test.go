package calc

import (
	"testing"

	"pfdash/internal/core"
)

func strategyDebts() []core.DebtRow {
	return []core.DebtRow{
		{Debt: "Car loan", Balance: 3000, APRPercent: 22, MonthlyPayment: 60},
		{Debt: "Medical", Balance: 1000, APRPercent: 8, MonthlyPayment: 30},
		{Debt: "Paid", Balance: 0, APRPercent: 15, MonthlyPayment: 10},
	}
}

func TestPayoffOrder_Avalanche(t *testing.T) {
	got := PayoffOrder(strategyDebts(), StrategyAvalanche)

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (zero balances dropped)", len(got))
	}
	if got[0].Debt != "Car loan" || got[1].Debt != "Medical" {
		t.Errorf("avalanche order = [%s, %s], want highest APR first", got[0].Debt, got[1].Debt)
	}
}

func TestPayoffOrder_Snowball(t *testing.T) {
	got := PayoffOrder(strategyDebts(), StrategySnowball)

	if got[0].Debt != "Medical" || got[1].Debt != "Car loan" {
		t.Errorf("snowball order = [%s, %s], want smallest balance first", got[0].Debt, got[1].Debt)
	}
}

func TestPayoffOrder_DoesNotMutateInput(t *testing.T) {
	debts := strategyDebts()
	PayoffOrder(debts, StrategySnowball)

	if debts[0].Debt != "Car loan" {
		t.Error("input slice order changed")
	}
}

func TestPlanStrategy_Avalanche(t *testing.T) {
	plan := PlanStrategy(strategyDebts(), 150, StrategyAvalanche)

	if !plan.Feasible {
		t.Fatalf("plan infeasible: %s", plan.Reason)
	}
	if plan.MonthsToPayoff != 35 {
		t.Errorf("months = %d, want 35", plan.MonthsToPayoff)
	}
	if plan.TotalInterestPaid != 1183.34 {
		t.Errorf("total interest = %v, want 1183.34", plan.TotalInterestPaid)
	}
}

func TestPlanStrategy_SnowballPaysMoreInterest(t *testing.T) {
	snow := PlanStrategy(strategyDebts(), 150, StrategySnowball)
	aval := PlanStrategy(strategyDebts(), 150, StrategyAvalanche)

	if !snow.Feasible || !aval.Feasible {
		t.Fatal("both plans should be feasible")
	}
	if snow.TotalInterestPaid < aval.TotalInterestPaid {
		t.Errorf("snowball interest %v should not beat avalanche %v",
			snow.TotalInterestPaid, aval.TotalInterestPaid)
	}
}

func TestPlanStrategy_BudgetBelowMinimums(t *testing.T) {
	plan := PlanStrategy(strategyDebts(), 50, StrategyAvalanche)

	if plan.Feasible {
		t.Error("plan should be infeasible when budget misses the minimums")
	}
	if plan.Reason == "" {
		t.Error("infeasible plan must carry a reason")
	}
}

func TestPlanStrategy_NoDebts(t *testing.T) {
	plan := PlanStrategy(nil, 100, StrategySnowball)

	if !plan.Feasible || plan.MonthsToPayoff != 0 || plan.TotalInterestPaid != 0 {
		t.Errorf("empty plan should be trivially feasible: %+v", plan)
	}
}

func TestPlanStrategy_NeverAmortizes(t *testing.T) {
	debts := []core.DebtRow{{Debt: "Runaway", Balance: 100000, APRPercent: 60, MonthlyPayment: 100}}

	plan := PlanStrategy(debts, 100, StrategyAvalanche)

	if plan.Feasible {
		t.Error("plan should be infeasible when interest outruns the budget")
	}
}

func TestCompareStrategies(t *testing.T) {
	cmp := CompareStrategies(strategyDebts(), 150)

	if !cmp.Snowball.Feasible || !cmp.Avalanche.Feasible {
		t.Fatal("both plans should be feasible")
	}
	if cmp.InterestSaved < 0 {
		t.Errorf("interest saved = %v, want >= 0", cmp.InterestSaved)
	}
	wantSaved := roundCents(cmp.Snowball.TotalInterestPaid - cmp.Avalanche.TotalInterestPaid)
	if wantSaved < 0 {
		wantSaved = 0
	}
	if cmp.InterestSaved != wantSaved {
		t.Errorf("interest saved = %v, want %v", cmp.InterestSaved, wantSaved)
	}
	if cmp.MonthsSaved != cmp.Snowball.MonthsToPayoff-cmp.Avalanche.MonthsToPayoff {
		t.Errorf("months saved mismatch: %+v", cmp)
	}
}
