package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketpal/internal/core"
)

// State mirrors the server's ledger in memory and rebuilds reports locally.
// Mutations go through the API and then refresh the snapshot. Concurrent
// refreshes are sequenced; a slow fetch that finishes after a newer one
// never overwrites the newer snapshot.
type State struct {
	client *Client

	mu         sync.RWMutex
	entries    []core.Entry
	categories []core.Category
	subjects   []core.Subject
	lastErr    error
	refreshed  time.Time
	seq        uint64
	applied    uint64
}

func NewState(client *Client) *State {
	return &State{client: client}
}

// Refresh fetches entries, categories and subjects concurrently and swaps
// in the new snapshot. On failure the previous snapshot is retained and the
// error is recorded and returned.
func (s *State) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var (
		entries    []core.Entry
		categories []core.Category
		subjects   []core.Subject
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.client.ListEntries(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.client.ListCategories(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		subjects, err = s.client.ListSubjects(ctx, 0)
		return err
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		if seq > s.applied {
			// Only record the error when no newer refresh has landed.
			s.lastErr = err
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		// A newer refresh already landed; drop this result.
		return nil
	}
	s.applied = seq
	s.entries = entries
	s.categories = categories
	s.subjects = subjects
	s.lastErr = nil
	s.refreshed = time.Now()
	return nil
}

// Entries returns the current snapshot, newest date first.
func (s *State) Entries() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *State) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *State) Subjects(categoryID int64) []core.Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Subject, 0, len(s.subjects))
	for _, subject := range s.subjects {
		if categoryID == 0 || subject.CategoryID == categoryID {
			out = append(out, subject)
		}
	}
	return out
}

// LastError returns the error of the most recent failed refresh, or nil if
// the last refresh succeeded.
func (s *State) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// RefreshedAt reports when the current snapshot was taken.
func (s *State) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshed
}

// Report aggregates the current snapshot over the given period without a
// server round trip.
func (s *State) Report(filter *core.PeriodFilter) core.Report {
	s.mu.RLock()
	entries := s.entries
	categories := s.categories
	s.mu.RUnlock()
	return core.BuildReport(entries, categories, filter)
}

// --- Mutations ---

func (s *State) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	created, err := s.client.CreateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, err
	}
	return created, s.Refresh(ctx)
}

func (s *State) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	updated, err := s.client.UpdateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, err
	}
	return updated, s.Refresh(ctx)
}

func (s *State) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.client.DeleteEntry(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *State) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	created, err := s.client.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, err
	}
	return created, s.Refresh(ctx)
}

func (s *State) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.client.DeleteCategory(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func (s *State) CreateSubject(ctx context.Context, categoryID int64, name string) (core.Subject, error) {
	created, err := s.client.CreateSubject(ctx, categoryID, name)
	if err != nil {
		return core.Subject{}, err
	}
	return created, s.Refresh(ctx)
}

func (s *State) DeleteSubject(ctx context.Context, id int64) error {
	if err := s.client.DeleteSubject(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
