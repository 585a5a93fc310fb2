package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// IDFunc allocates a new record identity.
type IDFunc func() (string, error)

// Field is one attribute assignment requested by an update.
type Field struct {
	Name  string
	Value Value
}

// Service applies record operations to a Registry and writes every mutation
// through to a Persister. A failed write rolls the registry back.
type Service struct {
	registry  *Registry
	store     Persister
	ids       IDFunc
	now       func() time.Time
	parseList func(string) (Value, error)
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithListParser sets the parser used when a string is coerced into a list.
func WithListParser(parse func(string) (Value, error)) ServiceOption {
	return func(s *Service) {
		s.parseList = parse
	}
}

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new Service.
func NewService(registry *Registry, store Persister, ids IDFunc, opts ...ServiceOption) *Service {
	s := &Service{
		registry: registry,
		store:    store,
		ids:      ids,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the registry the service operates on.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Create allocates an identity for a new record of kind k, applies attrs,
// inserts it and saves it. Reserved attribute names in attrs are ignored.
func (s *Service) Create(ctx context.Context, k Kind, attrs Attributes) (*Record, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	id, err := s.ids()
	if err != nil {
		return nil, fmt.Errorf("allocate id: %w", err)
	}
	r, err := NewRecord(k, id, s.now())
	if err != nil {
		return nil, err
	}
	for name, v := range attrs {
		if IsReserved(name) {
			continue
		}
		if err := r.Set(name, v); err != nil {
			return nil, err
		}
	}

	s.registry.Insert(r)
	if err := s.SaveRecord(ctx, r); err != nil {
		s.registry.Remove(r.Key())
		return nil, err
	}
	s.logger.Debug("record created", "key", r.Key())
	return r, nil
}

// SaveRecord refreshes the modification timestamp of r and writes the
// registry through to storage.
func (s *Service) SaveRecord(ctx context.Context, r *Record) error {
	r.Touch(s.now())
	return s.save(ctx)
}

// Get returns the record of kind k with the given id.
func (s *Service) Get(k Kind, id string) (*Record, error) {
	r, ok := s.registry.Get(Key(k, id))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Key(k, id))
	}
	return r, nil
}

// Destroy removes a record and saves.
func (s *Service) Destroy(ctx context.Context, k Kind, id string) error {
	r, err := s.Get(k, id)
	if err != nil {
		return err
	}
	s.registry.Remove(r.Key())
	if err := s.save(ctx); err != nil {
		s.registry.Insert(r)
		return err
	}
	s.logger.Debug("record destroyed", "key", r.Key())
	return nil
}

// Update applies fields to a record. If any field names a reserved
// attribute the whole update is skipped: nothing changes and nothing is
// written, and applied is false.
//
// Attributes the record already has (directly or through its kind defaults)
// are coerced to the existing type; when that fails the raw string is
// stored. New attributes are stored as given.
func (s *Service) Update(ctx context.Context, k Kind, id string, fields []Field) (applied bool, err error) {
	r, err := s.Get(k, id)
	if err != nil {
		return false, err
	}
	for _, f := range fields {
		if IsReserved(f.Name) {
			s.logger.Debug("update skipped", "key", r.Key(), "attribute", f.Name)
			return false, nil
		}
	}

	before := r.Clone()
	for _, f := range fields {
		if err := r.Set(f.Name, s.coerce(r, f)); err != nil {
			s.registry.Insert(before)
			return false, err
		}
	}
	if err := s.SaveRecord(ctx, r); err != nil {
		s.registry.Insert(before)
		return false, err
	}
	s.logger.Debug("record updated", "key", r.Key(), "fields", len(fields))
	return true, nil
}

func (s *Service) coerce(r *Record, f Field) Value {
	existing, ok := r.Attr(f.Name)
	if !ok {
		return f.Value
	}
	if v, ok := f.Value.Coerce(existing.Type, s.parseList); ok {
		return v
	}
	return String(f.Value.String())
}

// List returns the records of kind k (every record when k is empty).
func (s *Service) List(k Kind) []*Record {
	return s.registry.List(k)
}

// Count returns the number of records of kind k.
func (s *Service) Count(k Kind) int {
	return s.registry.Count(k)
}

func (s *Service) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx); err != nil {
		s.logger.Error("save failed", "error", err)
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return nil
}
