package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pocketpal/internal/core"
	"pocketpal/internal/services"
	"pocketpal/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteRepository(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	srv := NewServer(":0", services.NewLedgerService(repo, nil))
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createCategory(t *testing.T, ts *httptest.Server, name string) core.Category {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/categories/", map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d", resp.StatusCode)
	}
	var c core.Category
	decodeInto(t, resp, &c)
	return c
}

func createSubject(t *testing.T, ts *httptest.Server, categoryID int64, name string) core.Subject {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/subjects/", map[string]any{
		"category_id": categoryID,
		"name":        name,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create subject: expected 201, got %d", resp.StatusCode)
	}
	var s core.Subject
	decodeInto(t, resp, &s)
	return s
}

func createEntry(t *testing.T, ts *httptest.Server, body map[string]any) core.Entry {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries/", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create entry: expected 201, got %d", resp.StatusCode)
	}
	var e core.Entry
	decodeInto(t, resp, &e)
	return e
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, resp.StatusCode)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Errorf("GET %s: expected a request ID header", path)
		}
	}
}

func TestCategoryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")

	// Duplicate name conflicts.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/categories/", map[string]string{"name": "Food"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate: expected 409, got %d", resp.StatusCode)
	}

	// Empty name is rejected.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/categories/", map[string]string{"name": "  "})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty name: expected 400, got %d", resp.StatusCode)
	}

	// Unknown ID is a 404.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/categories/999", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing: expected 404, got %d", resp.StatusCode)
	}

	// Rename works.
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/categories/%d", ts.URL, food.ID), map[string]string{"name": "Groceries"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: expected 200, got %d", resp.StatusCode)
	}
	var renamed core.Category
	decodeInto(t, resp, &renamed)
	if renamed.Name != "Groceries" {
		t.Errorf("expected Groceries, got %q", renamed.Name)
	}

	// Delete succeeds while unreferenced.
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", ts.URL, food.ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", resp.StatusCode)
	}
}

func TestDeleteCategoryInUseConflicts(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")
	createSubject(t, ts, food.ID, "Restaurant")

	resp := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/categories/%d", ts.URL, food.ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for category in use, got %d", resp.StatusCode)
	}
}

func TestSubjectListFilter(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")
	transport := createCategory(t, ts, "Transport")
	createSubject(t, ts, food.ID, "Restaurant")
	createSubject(t, ts, transport.ID, "Fuel")

	resp, err := http.Get(fmt.Sprintf("%s/api/subjects/?category_id=%d", ts.URL, food.ID))
	if err != nil {
		t.Fatalf("list subjects failed: %v", err)
	}
	var subjects []core.Subject
	decodeInto(t, resp, &subjects)
	if len(subjects) != 1 || subjects[0].Name != "Restaurant" {
		t.Errorf("unexpected filtered subjects: %+v", subjects)
	}

	resp, err = http.Get(ts.URL + "/api/subjects/?category_id=bogus")
	if err != nil {
		t.Fatalf("list subjects failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad category_id, got %d", resp.StatusCode)
	}
}

func TestEntryLifecycle(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")
	restaurant := createSubject(t, ts, food.ID, "Restaurant")

	entry := createEntry(t, ts, map[string]any{
		"date":        "2025-05-01",
		"category_id": food.ID,
		"subject_id":  restaurant.ID,
		"debit":       "50.00",
	})
	if entry.Debit.Cents != 5000 {
		t.Errorf("expected debit 5000 cents, got %d", entry.Debit.Cents)
	}
	if entry.CategoryName != "Food" || entry.SubjectName != "Restaurant" {
		t.Errorf("expected joined names, got %q / %q", entry.CategoryName, entry.SubjectName)
	}

	// Partial update changes only the debit amount.
	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/entries/%d", ts.URL, entry.ID), map[string]any{
		"debit": "60.00",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("partial update: expected 200, got %d", resp.StatusCode)
	}
	var updated core.Entry
	decodeInto(t, resp, &updated)
	if updated.Debit.Cents != 6000 {
		t.Errorf("expected debit 6000 after update, got %d", updated.Debit.Cents)
	}
	if updated.Date.Format("2006-01-02") != "2025-05-01" {
		t.Errorf("expected date unchanged, got %s", updated.Date.Format("2006-01-02"))
	}

	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/entries/%d", ts.URL, entry.ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", resp.StatusCode)
	}
}

func TestEntryValidationStatuses(t *testing.T) {
	ts := newTestServer(t)

	food := createCategory(t, ts, "Food")
	restaurant := createSubject(t, ts, food.ID, "Restaurant")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{
			name: "both amounts",
			body: map[string]any{
				"date": "2025-05-01", "category_id": food.ID, "subject_id": restaurant.ID,
				"debit": "10.00", "credit": "10.00",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "no amount",
			body: map[string]any{
				"date": "2025-05-01", "category_id": food.ID, "subject_id": restaurant.ID,
			},
			want: http.StatusBadRequest,
		},
		{
			name: "negative amount",
			body: map[string]any{
				"date": "2025-05-01", "category_id": food.ID, "subject_id": restaurant.ID,
				"debit": "-10.00",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "missing subject",
			body: map[string]any{
				"date": "2025-05-01", "category_id": food.ID, "subject_id": 999,
				"debit": "10.00",
			},
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/entries/", tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}
