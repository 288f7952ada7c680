package calc

import (
	"time"

	"pfdash/internal/core"
)

// DebtPayoff is one row of the per-debt payoff projection surfaced to the
// presentation layer.
type DebtPayoff struct {
	Debt                 string       `json:"debt"`
	Balance              float64      `json:"balance"`
	APRPercent           float64      `json:"apr_pct"`
	Payment              float64      `json:"payment"`
	Status               PayoffStatus `json:"status"`
	Reason               string       `json:"reason,omitempty"`
	MonthlyInterest      float64      `json:"monthly_interest"`
	MinPaymentToAmortize float64      `json:"min_payment_to_amortize"`
	Months               *int         `json:"months"`
	Years                *float64     `json:"years"`
	TotalInterest        *float64     `json:"total_interest"`
	PayoffDate           string       `json:"payoff_date,omitempty"`
}

// MetricsResult is the flat aggregate of every computed total, percentage,
// and payoff projection. It is recomputed in full from the snapshot on every
// call; there is no incremental state. Field names are persisted by the host
// layer's save/restore snapshots and must stay stable.
//
// Pointer fields are nil when the underlying ratio is undefined (for example
// any percent-of-income figure when net income is zero), so the presentation
// layer can render a blank instead of a misleading 0%.
type MetricsResult struct {
	TotalIncome           float64 `json:"total_income"`
	NetIncome             float64 `json:"net_income"`
	ManualDeductionsTotal float64 `json:"manual_deductions_total"`

	FixedTotal        float64 `json:"fixed_total"`
	EssentialTotal    float64 `json:"essential_total"`
	NonEssentialTotal float64 `json:"nonessential_total"`
	ExpensesTotal     float64 `json:"expenses_total"`

	SavingTotal       float64 `json:"saving_total"`
	InvestingTotal    float64 `json:"investing_total"`
	InvestingCashflow float64 `json:"investing_cashflow"`
	InvestingDisplay  float64 `json:"investing_display"`

	TotalMonthlyDebtPayments float64 `json:"total_monthly_debt_payments"`
	TotalOutflow             float64 `json:"total_outflow"`
	Remaining                float64 `json:"remaining"`
	HasDebt                  bool    `json:"has_debt"`

	TotalAssets      float64 `json:"total_assets"`
	TotalLiabilities float64 `json:"total_liabilities"`
	NetWorth         float64 `json:"net_worth"`

	EmployeeRetirement     float64  `json:"employee_retirement"`
	CompanyMatch           float64  `json:"company_match"`
	TotalRetirementContrib float64  `json:"total_retirement_contrib"`
	InvestingRateOfGross   *float64 `json:"investing_rate_of_gross"`
	InvestingRateOfNet     *float64 `json:"investing_rate_of_net"`

	DebtMinimums            float64 `json:"debt_minimums"`
	EmergencyMinimumMonthly float64 `json:"emergency_minimum_monthly"`

	NeedsPct       *float64 `json:"needs_pct"`
	WantsPct       *float64 `json:"wants_pct"`
	SaveInvestPct  *float64 `json:"save_invest_pct"`
	UnallocatedPct *float64 `json:"unallocated_pct"`

	TotalDebtBalance      float64      `json:"total_debt_balance"`
	DebtWeightedAPR       *float64     `json:"debt_weighted_apr"`
	DebtPayoffRows        []DebtPayoff `json:"debt_payoff_rows"`
	DebtHasNonAmortizing  bool         `json:"debt_has_non_amortizing"`
	DebtOverallMonths     *int         `json:"debt_overall_months"`
	DebtOverallInterest   *float64     `json:"debt_overall_interest"`
	DebtOverallPayoffDate string       `json:"debt_overall_payoff_date,omitempty"`
	DebtBurdenPct         *float64     `json:"debt_burden_pct"`
}

// payoffDateFormat renders projected payoff months as e.g. "Mar 2027".
const payoffDateFormat = "Jan 2006"

// Compute derives the full metrics result from a sanitized snapshot. It is a
// pure function: the snapshot is never mutated, no state survives the call,
// and identical inputs (including now) produce identical results. now anchors
// projected payoff dates.
func Compute(s core.Snapshot, now time.Time) MetricsResult {
	t := s.Tables
	d := s.Settings.Deductions

	var m MetricsResult

	// Income and deductions.
	m.TotalIncome = sumIncome(t.Income)
	m.ManualDeductionsTotal = d.Total()
	m.NetIncome = m.TotalIncome
	if s.Settings.UseGrossBreakdown {
		m.NetIncome = m.TotalIncome - m.ManualDeductionsTotal
	}

	// Expenses, saving, investing.
	m.FixedTotal = sumExpenses(t.Fixed)
	m.EssentialTotal = sumExpenses(t.Essential)
	m.NonEssentialTotal = sumExpenses(t.NonEssential)
	m.ExpensesTotal = m.FixedTotal + m.EssentialTotal + m.NonEssentialTotal

	m.SavingTotal = sumContributions(t.Saving)
	m.InvestingTotal = sumContributions(t.Investing)

	// Cash-flow investing is take-home outflow only; the display figure adds
	// the payroll-side retirement contribution and employer match back in.
	m.InvestingCashflow = m.InvestingTotal
	m.InvestingDisplay = m.InvestingTotal + d.RetirementEmployee + d.CompanyMatch

	m.TotalMonthlyDebtPayments = Sum(t.Debts, func(r core.DebtRow) float64 { return r.MonthlyPayment })
	saveInvestCashflow := m.SavingTotal + m.InvestingCashflow

	m.TotalOutflow = m.ExpensesTotal + saveInvestCashflow + m.TotalMonthlyDebtPayments
	m.Remaining = m.NetIncome - m.TotalOutflow
	m.HasDebt = m.TotalMonthlyDebtPayments > 0

	// Net worth.
	m.TotalAssets = sumBalances(t.Assets)
	m.TotalLiabilities = sumBalances(t.Liabilities)
	m.NetWorth = m.TotalAssets - m.TotalLiabilities

	m.EmployeeRetirement = d.RetirementEmployee
	m.CompanyMatch = d.CompanyMatch
	m.TotalRetirementContrib = d.RetirementEmployee + d.CompanyMatch

	if m.TotalIncome > 0 {
		m.InvestingRateOfGross = floatPtr(m.InvestingDisplay / m.TotalIncome * 100)
	}
	if m.NetIncome > 0 {
		m.InvestingRateOfNet = floatPtr(m.InvestingDisplay / m.NetIncome * 100)
	}

	// Emergency minimum and the needs/wants/save split.
	m.DebtMinimums = m.TotalMonthlyDebtPayments
	m.EmergencyMinimumMonthly = m.FixedTotal + m.EssentialTotal + m.DebtMinimums

	if m.NetIncome > 0 {
		needs := m.EmergencyMinimumMonthly / m.NetIncome * 100
		wants := m.NonEssentialTotal / m.NetIncome * 100
		saveInvest := saveInvestCashflow / m.NetIncome * 100
		m.NeedsPct = floatPtr(needs)
		m.WantsPct = floatPtr(wants)
		m.SaveInvestPct = floatPtr(saveInvest)
		m.UnallocatedPct = floatPtr(max(0, 100-(needs+wants+saveInvest)))
	}

	computeDebtMetrics(&m, t.Debts, now)

	if m.NetIncome > 0 && m.TotalMonthlyDebtPayments > 0 {
		m.DebtBurdenPct = floatPtr(m.TotalMonthlyDebtPayments / m.NetIncome * 100)
	}

	return m
}

// computeDebtMetrics fills the payoff section: per-debt projections, the
// weighted APR, and the combined estimate when every debt amortizes.
func computeDebtMetrics(m *MetricsResult, debts []core.DebtRow, now time.Time) {
	m.TotalDebtBalance = Sum(debts, func(r core.DebtRow) float64 { return r.Balance })

	// Balance-weighted mean APR across debts that carry a balance. Zero
	// balances contribute nothing to either side of the division.
	if m.TotalDebtBalance > 0 {
		num := 0.0
		for _, r := range debts {
			num += r.Balance * r.APRPercent
		}
		m.DebtWeightedAPR = floatPtr(num / m.TotalDebtBalance)
	}

	for _, r := range debts {
		// Rows with nothing owed contribute nothing, even with stray
		// payment or APR data.
		if r.Balance <= 0 {
			continue
		}

		name := r.Debt
		if name == "" {
			name = "Debt"
		}

		est := EstimatePayoff(r.Balance, r.APRPercent, r.MonthlyPayment)
		if est.Status != StatusPaidOff {
			m.DebtHasNonAmortizing = true
		}

		row := DebtPayoff{
			Debt:                 name,
			Balance:              r.Balance,
			APRPercent:           r.APRPercent,
			Payment:              r.MonthlyPayment,
			Status:               est.Status,
			Reason:               est.Reason,
			MonthlyInterest:      est.MonthlyInterest,
			MinPaymentToAmortize: est.MinPaymentToAmortize,
			Months:               est.Months,
			TotalInterest:        est.TotalInterest,
		}
		if est.Months != nil {
			row.Years = floatPtr(float64(*est.Months) / 12.0)
			row.PayoffDate = formatPayoffDate(now, *est.Months)
		}
		m.DebtPayoffRows = append(m.DebtPayoffRows, row)
	}

	// A single non-amortizing debt means no honest overall payoff date.
	if m.DebtHasNonAmortizing || m.TotalDebtBalance <= 0 ||
		m.TotalMonthlyDebtPayments <= 0 || m.DebtWeightedAPR == nil {
		return
	}

	overall := EstimatePayoff(m.TotalDebtBalance, *m.DebtWeightedAPR, m.TotalMonthlyDebtPayments)
	if overall.Status != StatusPaidOff || overall.Months == nil {
		return
	}
	m.DebtOverallMonths = overall.Months
	m.DebtOverallInterest = overall.TotalInterest
	m.DebtOverallPayoffDate = formatPayoffDate(now, *overall.Months)
}

func formatPayoffDate(now time.Time, months int) string {
	if months == 0 {
		return "Now"
	}
	// Anchor at the first of the month before adding. AddDate on day 29-31
	// overflows into the following month when the target month is shorter,
	// which would render the payoff one month late.
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return anchor.AddDate(0, months, 0).Format(payoffDateFormat)
}
