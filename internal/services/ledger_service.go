// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pocketpal/internal/amqp"
	"pocketpal/internal/core"
	"pocketpal/internal/storage"
)

// EventPublisher publishes ledger change notifications. *amqp.Client
// satisfies it; a nil publisher disables events.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, entity, action string, id int64) error
}

// LedgerService orchestrates ledger operations across SQLite and AMQP.
type LedgerService struct {
	storage *storage.SQLiteRepository
	events  EventPublisher
}

func NewLedgerService(storage *storage.SQLiteRepository, events EventPublisher) *LedgerService {
	return &LedgerService{
		storage: storage,
		events:  events,
	}
}

// --- Categories ---

func (s *LedgerService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	if err := (core.Category{Name: strings.TrimSpace(name)}).Validate(); err != nil {
		return core.Category{}, err
	}

	category, err := s.storage.CreateCategory(ctx, name)
	if err != nil {
		return core.Category{}, err
	}
	s.publish(ctx, amqp.EntityCategory, amqp.ActionCreated, category.ID)
	return category, nil
}

func (s *LedgerService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.storage.GetCategory(ctx, id)
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error) {
	if err := (core.Category{Name: strings.TrimSpace(name)}).Validate(); err != nil {
		return core.Category{}, err
	}

	category, err := s.storage.UpdateCategory(ctx, id, name)
	if err != nil {
		return core.Category{}, err
	}
	s.publish(ctx, amqp.EntityCategory, amqp.ActionUpdated, category.ID)
	return category, nil
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityCategory, amqp.ActionDeleted, id)
	return nil
}

// --- Subjects ---

func (s *LedgerService) CreateSubject(ctx context.Context, categoryID int64, name string) (core.Subject, error) {
	if err := (core.Subject{CategoryID: categoryID, Name: strings.TrimSpace(name)}).Validate(); err != nil {
		return core.Subject{}, err
	}

	subject, err := s.storage.CreateSubject(ctx, categoryID, name)
	if err != nil {
		return core.Subject{}, err
	}
	s.publish(ctx, amqp.EntitySubject, amqp.ActionCreated, subject.ID)
	return subject, nil
}

func (s *LedgerService) GetSubject(ctx context.Context, id int64) (core.Subject, error) {
	return s.storage.GetSubject(ctx, id)
}

func (s *LedgerService) ListSubjects(ctx context.Context, categoryID int64) ([]core.Subject, error) {
	return s.storage.ListSubjects(ctx, categoryID)
}

func (s *LedgerService) UpdateSubject(ctx context.Context, id int64, name string) (core.Subject, error) {
	subject, err := s.storage.GetSubject(ctx, id)
	if err != nil {
		return core.Subject{}, err
	}
	subject.Name = strings.TrimSpace(name)
	if err := subject.Validate(); err != nil {
		return core.Subject{}, err
	}

	updated, err := s.storage.UpdateSubject(ctx, id, name)
	if err != nil {
		return core.Subject{}, err
	}
	s.publish(ctx, amqp.EntitySubject, amqp.ActionUpdated, updated.ID)
	return updated, nil
}

func (s *LedgerService) DeleteSubject(ctx context.Context, id int64) error {
	if err := s.storage.DeleteSubject(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntitySubject, amqp.ActionDeleted, id)
	return nil
}

// --- Entries ---

// CreateEntry validates and saves an entry, then publishes a change event.
// The subject must belong to the entry's category.
func (s *LedgerService) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	if err := s.checkSubjectCategory(ctx, e.SubjectID, e.CategoryID); err != nil {
		return core.Entry{}, err
	}

	entry, err := s.storage.CreateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, err
	}
	s.publish(ctx, amqp.EntityEntry, amqp.ActionCreated, entry.ID)
	return entry, nil
}

func (s *LedgerService) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	return s.storage.GetEntry(ctx, id)
}

func (s *LedgerService) ListEntries(ctx context.Context) ([]core.Entry, error) {
	return s.storage.ListEntries(ctx)
}

func (s *LedgerService) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	if err := s.checkSubjectCategory(ctx, e.SubjectID, e.CategoryID); err != nil {
		return core.Entry{}, err
	}

	entry, err := s.storage.UpdateEntry(ctx, e)
	if err != nil {
		return core.Entry{}, err
	}
	s.publish(ctx, amqp.EntityEntry, amqp.ActionUpdated, entry.ID)
	return entry, nil
}

func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.storage.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityEntry, amqp.ActionDeleted, id)
	return nil
}

// BuildReport assembles the aggregated view over the given period.
func (s *LedgerService) BuildReport(ctx context.Context, filter *core.PeriodFilter) (core.Report, error) {
	entries, err := s.storage.ListEntries(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("load entries: %w", err)
	}
	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("load categories: %w", err)
	}
	return core.BuildReport(entries, categories, filter), nil
}

func (s *LedgerService) checkSubjectCategory(ctx context.Context, subjectID, categoryID int64) error {
	subject, err := s.storage.GetSubject(ctx, subjectID)
	if err != nil {
		return err
	}
	if subject.CategoryID != categoryID {
		return fmt.Errorf("subject %d belongs to category %d, not %d: %w",
			subjectID, subject.CategoryID, categoryID, core.ErrMissingSubject)
	}
	return nil
}

func (s *LedgerService) publish(ctx context.Context, entity, action string, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishLedgerEvent(ctx, entity, action, id); err != nil {
		// Storage write already succeeded, so the request is not failed.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", entity,
			"action", action,
			"id", id,
			"error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.events.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
