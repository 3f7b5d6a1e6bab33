package http

import (
	"net/http"
	"testing"

	"pocketpal/internal/core"
)

func TestReportEndpoint(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")
	salary := createCategory(t, ts, "Salary")
	restaurant := createSubject(t, ts, food.ID, "Restaurant")
	monthly := createSubject(t, ts, salary.ID, "Monthly")

	createEntry(t, ts, map[string]any{
		"date": "2025-05-01", "category_id": food.ID, "subject_id": restaurant.ID, "debit": "50.00",
	})
	createEntry(t, ts, map[string]any{
		"date": "2025-05-03", "category_id": salary.ID, "subject_id": monthly.ID, "credit": "2000.00",
	})

	resp, err := http.Get(ts.URL + "/api/report")
	if err != nil {
		t.Fatalf("GET /api/report failed: %v", err)
	}
	var report core.Report
	decodeInto(t, resp, &report)

	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}
	if report.Totals.Net.Cents != 195000 {
		t.Errorf("expected net 195000 cents, got %d", report.Totals.Net.Cents)
	}
	// Newest first with the running balance attached.
	if report.Entries[0].RunningBalance.Cents != 195000 {
		t.Errorf("expected latest balance 195000, got %d", report.Entries[0].RunningBalance.Cents)
	}
	if len(report.Summaries) != 2 || report.Summaries[0].Name != "Food" {
		t.Errorf("unexpected summaries: %+v", report.Summaries)
	}
	if len(report.BarSeries) != 1 || report.BarSeries[0].Label != "Food" {
		t.Errorf("unexpected bar series: %+v", report.BarSeries)
	}
}

func TestReportCustomPeriod(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")
	restaurant := createSubject(t, ts, food.ID, "Restaurant")

	for _, date := range []string{"2025-05-01", "2025-05-10"} {
		createEntry(t, ts, map[string]any{
			"date": date, "category_id": food.ID, "subject_id": restaurant.ID, "debit": "10.00",
		})
	}

	resp, err := http.Get(ts.URL + "/api/report?period=custom&start=2025-05-05&end=2025-05-31")
	if err != nil {
		t.Fatalf("GET report failed: %v", err)
	}
	var report core.Report
	decodeInto(t, resp, &report)
	if len(report.Entries) != 1 {
		t.Fatalf("expected 1 entry inside the window, got %d", len(report.Entries))
	}
	if got := report.Entries[0].Date.Format("2006-01-02"); got != "2025-05-10" {
		t.Errorf("expected 2025-05-10, got %s", got)
	}

	// Custom without both bounds falls back to all time.
	resp, err = http.Get(ts.URL + "/api/report?period=custom&start=2025-05-05")
	if err != nil {
		t.Fatalf("GET report failed: %v", err)
	}
	decodeInto(t, resp, &report)
	if len(report.Entries) != 2 {
		t.Errorf("expected all 2 entries without a complete range, got %d", len(report.Entries))
	}
}

func TestReportBadParams(t *testing.T) {
	ts := newTestServer(t)

	for _, query := range []string{
		"?period=bogus",
		"?period=custom&start=junk&end=2025-05-31",
		"?period=custom&start=2025-05-01&end=junk",
	} {
		resp, err := http.Get(ts.URL + "/api/report" + query)
		if err != nil {
			t.Fatalf("GET report%s failed: %v", query, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("query %s: expected 400, got %d", query, resp.StatusCode)
		}
	}
}
