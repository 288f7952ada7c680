// Package export renders snapshot tables as CSV documents.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pfdash/internal/core"
)

// WriteMonthlyCSV writes every monthly cashflow table as one combined CSV
// with a Table column identifying the source collection.
func WriteMonthlyCSV(w io.Writer, t core.Tables) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Table", "Name", "Monthly Amount", "Notes"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	writeExpenses := func(table string, rows []core.ExpenseRow) error {
		for _, r := range rows {
			if err := cw.Write([]string{table, r.Expense, formatAmount(r.MonthlyAmount), r.Notes}); err != nil {
				return fmt.Errorf("write %s row: %w", table, err)
			}
		}
		return nil
	}

	for _, r := range t.Income {
		if err := cw.Write([]string{"Income", r.Source, formatAmount(r.MonthlyAmount), r.Notes}); err != nil {
			return fmt.Errorf("write Income row: %w", err)
		}
	}
	if err := writeExpenses("Fixed", t.Fixed); err != nil {
		return err
	}
	if err := writeExpenses("Essential", t.Essential); err != nil {
		return err
	}
	if err := writeExpenses("Non-Essential", t.NonEssential); err != nil {
		return err
	}
	for _, r := range t.Saving {
		if err := cw.Write([]string{"Saving", r.Bucket, formatAmount(r.MonthlyAmount), r.Notes}); err != nil {
			return fmt.Errorf("write Saving row: %w", err)
		}
	}
	for _, r := range t.Investing {
		if err := cw.Write([]string{"Investing", r.Bucket, formatAmount(r.MonthlyAmount), r.Notes}); err != nil {
			return fmt.Errorf("write Investing row: %w", err)
		}
	}
	for _, r := range t.Debts {
		if err := cw.Write([]string{"Debt Payments", r.Debt, formatAmount(r.MonthlyPayment), r.Notes}); err != nil {
			return fmt.Errorf("write Debt Payments row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteNetWorthCSV writes assets, liabilities, and debt balances as one CSV.
func WriteNetWorthCSV(w io.Writer, t core.Tables) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Type", "Item", "Value", "Notes"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range t.Assets {
		if err := cw.Write([]string{"Asset", r.Item, formatAmount(r.Value), r.Notes}); err != nil {
			return fmt.Errorf("write Asset row: %w", err)
		}
	}
	for _, r := range t.Liabilities {
		if err := cw.Write([]string{"Liability", r.Item, formatAmount(r.Value), r.Notes}); err != nil {
			return fmt.Errorf("write Liability row: %w", err)
		}
	}
	for _, r := range t.Debts {
		if err := cw.Write([]string{"Debt", r.Debt, formatAmount(r.Balance), r.Notes}); err != nil {
			return fmt.Errorf("write Debt row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
