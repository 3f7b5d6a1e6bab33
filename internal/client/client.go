// Package client provides a typed API client for the ledger server plus an
// in-memory state that mirrors it for interactive use.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pocketpal/internal/core"
)

// Client talks to the ledger JSON API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError carries the status and message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, dst any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if dst != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// --- Categories ---

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	err := c.do(ctx, http.MethodGet, "/api/categories/", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	var out core.Category
	err := c.do(ctx, http.MethodPost, "/api/categories/", map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	var out core.Category
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/categories/%d", id), map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/categories/%d", id), nil, nil)
}

// --- Subjects ---

func (c *Client) ListSubjects(ctx context.Context, categoryID int64) ([]core.Subject, error) {
	path := "/api/subjects/"
	if categoryID != 0 {
		path += "?category_id=" + strconv.FormatInt(categoryID, 10)
	}
	var out []core.Subject
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CreateSubject(ctx context.Context, categoryID int64, name string) (core.Subject, error) {
	var out core.Subject
	err := c.do(ctx, http.MethodPost, "/api/subjects/", map[string]any{
		"category_id": categoryID,
		"name":        name,
	}, &out)
	return out, err
}

func (c *Client) UpdateSubject(ctx context.Context, id int64, name string) (core.Subject, error) {
	var out core.Subject
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/subjects/%d", id), map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) DeleteSubject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/subjects/%d", id), nil, nil)
}

// --- Entries ---

func (c *Client) ListEntries(ctx context.Context) ([]core.Entry, error) {
	var out []core.Entry
	err := c.do(ctx, http.MethodGet, "/api/entries/", nil, &out)
	return out, err
}

func (c *Client) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	var out core.Entry
	err := c.do(ctx, http.MethodPost, "/api/entries/", map[string]any{
		"date":        e.Date,
		"category_id": e.CategoryID,
		"subject_id":  e.SubjectID,
		"debit":       e.Debit,
		"credit":      e.Credit,
	}, &out)
	return out, err
}

func (c *Client) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	var out core.Entry
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/entries/%d", e.ID), map[string]any{
		"date":        e.Date,
		"category_id": e.CategoryID,
		"subject_id":  e.SubjectID,
		"debit":       e.Debit,
		"credit":      e.Credit,
	}, &out)
	return out, err
}

func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/entries/%d", id), nil, nil)
}

// --- Report ---

// FetchReport retrieves the server-side aggregation for the given period.
func (c *Client) FetchReport(ctx context.Context, selection core.PeriodSelection) (core.Report, error) {
	q := url.Values{}
	if selection.Kind != "" {
		q.Set("period", string(selection.Kind))
	}
	if !selection.Start.IsZero() {
		q.Set("start", selection.Start.Format("2006-01-02"))
	}
	if !selection.End.IsZero() {
		q.Set("end", selection.End.Format("2006-01-02"))
	}

	path := "/api/report"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out core.Report
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
