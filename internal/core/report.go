// The aggregation engine: pure transforms from a snapshot of entries and
// categories to the derived, display-ready dashboard structures. Nothing in
// this file holds state between calls; every view is recomputed from the
// latest snapshot.
package core

import "sort"

type (
	// AnnotatedEntry is an entry carrying the running balance of the window
	// it was computed over (cumulative credit - debit in date order).
	AnnotatedEntry struct {
		Entry
		RunningBalance Money `json:"running_balance"`
	}

	// CategorySummary aggregates the matching entries of one category.
	CategorySummary struct {
		CategoryID   int64  `json:"category_id"`
		Name         string `json:"name"`
		TotalIncome  Money  `json:"total_income"`
		TotalExpense Money  `json:"total_expense"`
		Net          Money  `json:"net"`
		EntryCount   int    `json:"entry_count"`
	}

	// Totals are the window-wide income/expense/net scalars.
	Totals struct {
		Income  Money `json:"income"`
		Expense Money `json:"expense"`
		Net     Money `json:"net"`
	}

	// PieSlice is one slice of the income-vs-expense split.
	PieSlice struct {
		Label  string `json:"label"`
		Amount Money  `json:"amount"`
	}

	// BarPoint is one bar of the per-category expense breakdown.
	BarPoint struct {
		Label   string `json:"label"`
		Expense Money  `json:"expense"`
	}

	// Report is the full derived view for one period window.
	Report struct {
		Entries   []AnnotatedEntry  `json:"entries"`
		Summaries []CategorySummary `json:"summaries"`
		Totals    Totals            `json:"totals"`
		PieSeries []PieSlice        `json:"pie_series"`
		BarSeries []BarPoint        `json:"bar_series"`
	}
)

// AnnotateBalances sorts entries by date ascending (ties broken by ID so
// repeated calls over the same input are stable), accumulates the running
// balance on that ascending pass, then reverses to the display order (most
// recent first). The balance must be accumulated before reversal.
func AnnotateBalances(entries []Entry) []AnnotatedEntry {
	ordered := make([]Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date.Time) {
			return ordered[i].Date.Before(ordered[j].Date.Time)
		}
		return ordered[i].ID < ordered[j].ID
	})

	annotated := make([]AnnotatedEntry, len(ordered))
	var balance Money
	for i, e := range ordered {
		balance = balance.Add(e.Net())
		annotated[i] = AnnotatedEntry{Entry: e, RunningBalance: balance}
	}

	for i, j := 0, len(annotated)-1; i < j; i, j = i+1, j-1 {
		annotated[i], annotated[j] = annotated[j], annotated[i]
	}
	return annotated
}

// Summarize groups the (already filtered) entries by category. Categories
// with no matching entry are omitted even though they exist in the
// directory. An entry whose category is missing from the directory is still
// counted, labeled with the name embedded on the entry or the
// UnknownCategoryLabel sentinel. The result is sorted by total expense
// descending so the largest spenders surface first.
func Summarize(entries []Entry, categories []Category) []CategorySummary {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	index := make(map[int64]int)
	summaries := make([]CategorySummary, 0)
	for _, e := range entries {
		i, ok := index[e.CategoryID]
		if !ok {
			name, known := names[e.CategoryID]
			if !known {
				// Orphaned reference: recoverable, never dropped.
				name = e.CategoryName
				if name == "" {
					name = UnknownCategoryLabel
				}
			}
			i = len(summaries)
			index[e.CategoryID] = i
			summaries = append(summaries, CategorySummary{CategoryID: e.CategoryID, Name: name})
		}
		summaries[i].TotalIncome = summaries[i].TotalIncome.Add(e.Credit)
		summaries[i].TotalExpense = summaries[i].TotalExpense.Add(e.Debit)
		summaries[i].EntryCount++
	}
	for i := range summaries {
		summaries[i].Net = summaries[i].TotalIncome.Sub(summaries[i].TotalExpense)
	}

	// Stable keeps first-seen order for equal expenses, so output is
	// deterministic for identical input.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalExpense.Cents > summaries[j].TotalExpense.Cents
	})
	return summaries
}

// sumTotals folds the window-wide scalars from the filtered entries.
func sumTotals(entries []Entry) Totals {
	var t Totals
	for _, e := range entries {
		t.Income = t.Income.Add(e.Credit)
		t.Expense = t.Expense.Add(e.Debit)
	}
	t.Net = t.Income.Sub(t.Expense)
	return t
}

// pieSeries is the two-slice income-vs-expense split. Zero-valued slices are
// omitted rather than rendered as zero-width.
func pieSeries(t Totals) []PieSlice {
	series := make([]PieSlice, 0, 2)
	if !t.Income.IsZero() {
		series = append(series, PieSlice{Label: "Income", Amount: t.Income})
	}
	if !t.Expense.IsZero() {
		series = append(series, PieSlice{Label: "Expenses", Amount: t.Expense})
	}
	return series
}

// barSeries projects the per-category expense breakdown from the summaries,
// preserving their order and skipping categories without expenses. The chart
// is derived from the same summaries as the numeric view so the two can
// never disagree.
func barSeries(summaries []CategorySummary) []BarPoint {
	series := make([]BarPoint, 0, len(summaries))
	for _, s := range summaries {
		if s.TotalExpense.IsZero() {
			continue
		}
		series = append(series, BarPoint{Label: s.Name, Expense: s.TotalExpense})
	}
	return series
}

// BuildReport runs the full pipeline for one window: filter first, then
// annotate, group and derive the chart series, all over the same filtered
// set. The running balance is therefore a period balance over the visible
// window, not the all-time account balance.
func BuildReport(entries []Entry, categories []Category, filter *PeriodFilter) Report {
	visible := filter.Apply(entries)
	summaries := Summarize(visible, categories)
	totals := sumTotals(visible)
	return Report{
		Entries:   AnnotateBalances(visible),
		Summaries: summaries,
		Totals:    totals,
		PieSeries: pieSeries(totals),
		BarSeries: barSeries(summaries),
	}
}
