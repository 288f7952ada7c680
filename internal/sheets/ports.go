package sheets

import "context"

// HistoryRow is one line of the spreadsheet history tab: a monthly
// summary of the computed metrics for a stored snapshot.
type HistoryRow struct {
	MonthLabel     string
	GeneratedAt    string
	Signature      string
	NetIncome      float64
	ExpensesTotal  float64
	SavingTotal    float64
	InvestingTotal float64
	Remaining      float64
	NetWorth       float64
	DebtBalance    float64
}

// Ports for outbound adapters.
type (
	HistoryWriter interface {
		AppendHistoryRow(ctx context.Context, row HistoryRow) (rowRef string, err error)
	}
)
