package core

import (
	"math"
	"regexp"
	"strings"
)

// EssentialKeywords marks a variable expense as a "need" when its normalized
// name contains any of these substrings. Everything else is a "want".
var EssentialKeywords = []string{
	"grocery", "groceries",
	"electric", "electricity", "natural gas", "water", "sewer", "trash", "garbage",
	"utility", "utilities",
	"internet", "wifi", "phone", "cell",
	"insurance", "medical", "health", "prescription", "rx", "medicine",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a row name and collapses runs of whitespace so
// keyword matching is insensitive to how the user typed it.
func NormalizeName(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(strings.ToLower(s)), " ")
}

// IsEssentialName reports whether a normalized expense name matches any of
// the given lowercase keywords.
func IsEssentialName(name string, keywords []string) bool {
	n := NormalizeName(name)
	for _, k := range keywords {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// SanitizeAmount coerces degenerate numeric input: NaN and infinities become
// 0, negatives are clamped to 0. Amounts are never rejected.
func SanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	return v
}

// sanitizeAPR clamps negative rates to 0. Rates above the UI range are
// tolerated; the payoff evaluator classifies them like any other rate.
func sanitizeAPR(v float64) float64 {
	return SanitizeAmount(v)
}

// Sanitize returns a normalized deep copy of the snapshot. It is the single
// boundary step applied before any computation: names are trimmed, degenerate
// numbers are coerced, and a legacy combined variable-expense table is split
// into essential / non-essential collections by keyword. The input is never
// mutated.
func Sanitize(s Snapshot) Snapshot {
	out := s
	out.MonthLabel = strings.TrimSpace(s.MonthLabel)

	d := &out.Settings.Deductions
	d.Taxes = SanitizeAmount(d.Taxes)
	d.RetirementEmployee = SanitizeAmount(d.RetirementEmployee)
	d.CompanyMatch = SanitizeAmount(d.CompanyMatch)
	d.Benefits = SanitizeAmount(d.Benefits)
	d.OtherSSI = SanitizeAmount(d.OtherSSI)

	t := &out.Tables
	t.Income = sanitizeIncome(s.Tables.Income)
	t.Fixed = sanitizeExpenses(s.Tables.Fixed)
	t.Essential = sanitizeExpenses(s.Tables.Essential)
	t.NonEssential = sanitizeExpenses(s.Tables.NonEssential)
	t.Variable = sanitizeExpenses(s.Tables.Variable)
	t.Saving = sanitizeContributions(s.Tables.Saving)
	t.Investing = sanitizeContributions(s.Tables.Investing)
	t.Debts = sanitizeDebts(s.Tables.Debts)
	t.Assets = sanitizeBalances(s.Tables.Assets)
	t.Liabilities = sanitizeBalances(s.Tables.Liabilities)

	// Old snapshots carry one combined variable table. Split it once here so
	// the engine only ever sees the pre-split collections.
	if len(t.Variable) > 0 && len(t.Essential) == 0 && len(t.NonEssential) == 0 {
		t.Essential, t.NonEssential = SplitVariable(t.Variable, EssentialKeywords)
		t.Variable = nil
	}

	return out
}

// SplitVariable partitions a combined variable-expense table into essential
// and non-essential rows by keyword matching on the expense name.
func SplitVariable(rows []ExpenseRow, keywords []string) (essential, nonEssential []ExpenseRow) {
	for _, r := range rows {
		if IsEssentialName(r.Expense, keywords) {
			essential = append(essential, r)
		} else {
			nonEssential = append(nonEssential, r)
		}
	}
	return essential, nonEssential
}

func sanitizeIncome(rows []IncomeRow) []IncomeRow {
	if rows == nil {
		return nil
	}
	out := make([]IncomeRow, len(rows))
	for i, r := range rows {
		out[i] = IncomeRow{
			Source:        strings.TrimSpace(r.Source),
			MonthlyAmount: SanitizeAmount(r.MonthlyAmount),
			Notes:         strings.TrimSpace(r.Notes),
		}
	}
	return out
}

func sanitizeExpenses(rows []ExpenseRow) []ExpenseRow {
	if rows == nil {
		return nil
	}
	out := make([]ExpenseRow, len(rows))
	for i, r := range rows {
		out[i] = ExpenseRow{
			Expense:       strings.TrimSpace(r.Expense),
			MonthlyAmount: SanitizeAmount(r.MonthlyAmount),
			Notes:         strings.TrimSpace(r.Notes),
		}
	}
	return out
}

func sanitizeContributions(rows []ContributionRow) []ContributionRow {
	if rows == nil {
		return nil
	}
	out := make([]ContributionRow, len(rows))
	for i, r := range rows {
		out[i] = ContributionRow{
			Bucket:        strings.TrimSpace(r.Bucket),
			MonthlyAmount: SanitizeAmount(r.MonthlyAmount),
			Notes:         strings.TrimSpace(r.Notes),
		}
	}
	return out
}

func sanitizeBalances(rows []BalanceRow) []BalanceRow {
	if rows == nil {
		return nil
	}
	out := make([]BalanceRow, len(rows))
	for i, r := range rows {
		out[i] = BalanceRow{
			Item:  strings.TrimSpace(r.Item),
			Value: SanitizeAmount(r.Value),
			Notes: strings.TrimSpace(r.Notes),
		}
	}
	return out
}

func sanitizeDebts(rows []DebtRow) []DebtRow {
	if rows == nil {
		return nil
	}
	out := make([]DebtRow, len(rows))
	for i, r := range rows {
		out[i] = DebtRow{
			Debt:           strings.TrimSpace(r.Debt),
			Balance:        SanitizeAmount(r.Balance),
			APRPercent:     sanitizeAPR(r.APRPercent),
			MonthlyPayment: SanitizeAmount(r.MonthlyPayment),
			Notes:          strings.TrimSpace(r.Notes),
		}
	}
	return out
}
