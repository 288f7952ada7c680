package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"pfdash/internal/core"
)

func testTables() core.Tables {
	return core.Tables{
		Income:       []core.IncomeRow{{Source: "Salary", MonthlyAmount: 4000, Notes: "net"}},
		Fixed:        []core.ExpenseRow{{Expense: "Rent", MonthlyAmount: 1200}},
		Essential:    []core.ExpenseRow{{Expense: "Groceries", MonthlyAmount: 450.5}},
		NonEssential: []core.ExpenseRow{{Expense: "Dining, out", MonthlyAmount: 200}},
		Saving:       []core.ContributionRow{{Bucket: "Emergency", MonthlyAmount: 300}},
		Investing:    []core.ContributionRow{{Bucket: "Brokerage", MonthlyAmount: 500}},
		Debts:        []core.DebtRow{{Debt: "Card", Balance: 1500, MonthlyPayment: 100}},
		Assets:       []core.BalanceRow{{Item: "Cash", Value: 10000}},
		Liabilities:  []core.BalanceRow{{Item: "Car loan", Value: 6000}},
	}
}

func TestWriteMonthlyCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyCSV(&buf, testTables()); err != nil {
		t.Fatalf("WriteMonthlyCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	want := [][]string{
		{"Table", "Name", "Monthly Amount", "Notes"},
		{"Income", "Salary", "4000.00", "net"},
		{"Fixed", "Rent", "1200.00", ""},
		{"Essential", "Groceries", "450.50", ""},
		{"Non-Essential", "Dining, out", "200.00", ""},
		{"Saving", "Emergency", "300.00", ""},
		{"Investing", "Brokerage", "500.00", ""},
		{"Debt Payments", "Card", "100.00", ""},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d: %v", len(records), len(want), records)
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestWriteNetWorthCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteNetWorthCSV(&buf, testTables()); err != nil {
		t.Fatalf("WriteNetWorthCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}

	want := [][]string{
		{"Type", "Item", "Value", "Notes"},
		{"Asset", "Cash", "10000.00", ""},
		{"Liability", "Car loan", "6000.00", ""},
		{"Debt", "Card", "1500.00", ""},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d: %v", len(records), len(want), records)
	}
	for i := range want {
		if strings.Join(records[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}
}

func TestWriteMonthlyCSVEmptyTables(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyCSV(&buf, core.Tables{}); err != nil {
		t.Fatalf("WriteMonthlyCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}
