package core

import "time"

type (
	// IncomeRow is one income source with its monthly take.
	IncomeRow struct {
		Source        string  `json:"source"`
		MonthlyAmount float64 `json:"monthly_amount"`
		Notes         string  `json:"notes,omitempty"`
	}

	// ExpenseRow is one recurring expense. The same shape is used for the
	// fixed, essential, and non-essential collections.
	ExpenseRow struct {
		Expense       string  `json:"expense"`
		MonthlyAmount float64 `json:"monthly_amount"`
		Notes         string  `json:"notes,omitempty"`
	}

	// ContributionRow is a monthly saving or investing allocation.
	ContributionRow struct {
		Bucket        string  `json:"bucket"`
		MonthlyAmount float64 `json:"monthly_amount"`
		Notes         string  `json:"notes,omitempty"`
	}

	// BalanceRow is a point-in-time asset or liability value.
	BalanceRow struct {
		Item  string  `json:"item"`
		Value float64 `json:"value"`
		Notes string  `json:"notes,omitempty"`
	}

	// DebtRow describes one debt: what is owed, at what rate, and the
	// minimum monthly payment being made against it.
	DebtRow struct {
		Debt           string  `json:"debt"`
		Balance        float64 `json:"balance"`
		APRPercent     float64 `json:"apr_pct"`
		MonthlyPayment float64 `json:"monthly_payment"`
		Notes          string  `json:"notes,omitempty"`
	}
)

// Deductions holds the manual paycheck-breakdown scalars. CompanyMatch is
// tracked for reporting but never reduces take-home pay.
type Deductions struct {
	Taxes              float64 `json:"taxes"`
	RetirementEmployee float64 `json:"retirement_employee"`
	CompanyMatch       float64 `json:"company_match"`
	Benefits           float64 `json:"benefits"`
	OtherSSI           float64 `json:"other_ssi"`
}

// Total returns the sum of deductions that reduce take-home pay.
func (d Deductions) Total() float64 {
	return d.Taxes + d.RetirementEmployee + d.Benefits + d.OtherSSI
}

// Settings is the scalar settings bundle handed to the engine alongside the
// row collections.
type Settings struct {
	// UseGrossBreakdown treats income rows as gross and applies the manual
	// deductions to derive net income. When false income is taken as-is.
	UseGrossBreakdown bool       `json:"use_gross_breakdown"`
	Deductions        Deductions `json:"gross_breakdown"`
}

// Tables holds the named row collections. Ordering within a collection is
// preserved for display; aggregation is order-independent.
type Tables struct {
	Income       []IncomeRow       `json:"income"`
	Fixed        []ExpenseRow      `json:"fixed_expenses"`
	Essential    []ExpenseRow      `json:"essential_expenses"`
	NonEssential []ExpenseRow      `json:"non_essential_expenses"`
	// Variable carries the legacy combined variable-expense table from old
	// snapshots. Sanitize splits it into Essential/NonEssential by keyword.
	Variable    []ExpenseRow      `json:"variable_expenses,omitempty"`
	Saving      []ContributionRow `json:"saving"`
	Investing   []ContributionRow `json:"investing"`
	Debts       []DebtRow         `json:"debt_details"`
	Assets      []BalanceRow      `json:"assets"`
	Liabilities []BalanceRow      `json:"liabilities"`
}

// Snapshot is the immutable unit of input: every metrics evaluation is a pure
// function of one Snapshot. It is also the JSON document the host layer
// persists for save/restore, so field names must stay stable.
type Snapshot struct {
	GeneratedAt time.Time `json:"generated_at"`
	MonthLabel  string    `json:"month_label"`
	Settings    Settings  `json:"settings"`
	Tables      Tables    `json:"tables"`
}
