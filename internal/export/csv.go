package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"pocketpal/internal/core"
)

// ToCSV writes a ledger snapshot to path, one row per entry in the order
// given, with the signed running balance in the last column.
func ToCSV(entries []core.AnnotatedEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Date", "Category", "Subject", "Debit", "Credit", "Balance"}); err != nil {
		return err
	}

	for _, e := range entries {
		categoryName := e.CategoryName
		if categoryName == "" {
			categoryName = core.UnknownCategoryLabel
		}

		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.Date.Format("2006-01-02"),
			categoryName,
			e.SubjectName,
			e.Debit.String(),
			e.Credit.String(),
			e.RunningBalance.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
