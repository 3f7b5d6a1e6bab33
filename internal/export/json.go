package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pocketpal/internal/core"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Totals     jsonTotals    `json:"totals"`
	Entries    []jsonEntry   `json:"entries"`
	Summaries  []jsonSummary `json:"summaries"`
}

type jsonTotals struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

type jsonEntry struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Debit    string `json:"debit,omitempty"`
	Credit   string `json:"credit,omitempty"`
	Balance  string `json:"balance"`
}

type jsonSummary struct {
	Category string `json:"category"`
	Income   string `json:"income"`
	Expense  string `json:"expense"`
	Net      string `json:"net"`
	Entries  int    `json:"entries"`
}

// ToJSON writes a full report snapshot to path as indented JSON.
func ToJSON(report core.Report, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(report.Entries),
		Totals: jsonTotals{
			Income:  report.Totals.Income.String(),
			Expense: report.Totals.Expense.String(),
			Net:     report.Totals.Net.String(),
		},
	}

	for _, e := range report.Entries {
		categoryName := e.CategoryName
		if categoryName == "" {
			categoryName = core.UnknownCategoryLabel
		}
		entry := jsonEntry{
			ID:       e.ID,
			Date:     e.Date.Format("2006-01-02"),
			Category: categoryName,
			Subject:  e.SubjectName,
			Balance:  e.RunningBalance.String(),
		}
		if !e.Debit.IsZero() {
			entry.Debit = e.Debit.String()
		}
		if !e.Credit.IsZero() {
			entry.Credit = e.Credit.String()
		}
		out.Entries = append(out.Entries, entry)
	}

	for _, s := range report.Summaries {
		out.Summaries = append(out.Summaries, jsonSummary{
			Category: s.Name,
			Income:   s.TotalIncome.String(),
			Expense:  s.TotalExpense.String(),
			Net:      s.Net.String(),
			Entries:  s.EntryCount,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
