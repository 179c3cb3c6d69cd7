package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"savings/internal/core"
	"savings/internal/events"
	"savings/internal/records"
)

// EventPublisher forwards record events outside the process.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, e events.RecordEvent) error
}

// RecordService orchestrates record operations across the store, the
// in-process bus and the broker.
type RecordService struct {
	store     records.Store
	bus       *events.Bus
	publisher EventPublisher
}

type Option func(*RecordService)

// WithBus notifies in-process subscribers of every change.
func WithBus(bus *events.Bus) Option {
	return func(s *RecordService) { s.bus = bus }
}

// WithPublisher forwards every change to a broker.
func WithPublisher(p EventPublisher) Option {
	return func(s *RecordService) { s.publisher = p }
}

// NewRecordService wires the service. It panics on a nil store.
func NewRecordService(store records.Store, opts ...Option) *RecordService {
	if store == nil {
		panic("services: NewRecordService requires a record store")
	}
	s := &RecordService{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add stores a snapshot and announces it. Announcement failures are logged
// only: the snapshot is already saved.
func (s *RecordService) Add(ctx context.Context, in core.RecordInput) (core.SavingsRecord, error) {
	rec, err := s.store.Add(ctx, in)
	if err != nil {
		return core.SavingsRecord{}, fmt.Errorf("save record: %w", err)
	}
	s.announce(ctx, events.Created(rec))
	return rec, nil
}

// AddRaw coerces form input and stores it.
func (s *RecordService) AddRaw(ctx context.Context, raw core.RawInput) (core.SavingsRecord, error) {
	in, err := raw.ToInput()
	if err != nil {
		return core.SavingsRecord{}, err
	}
	return s.Add(ctx, in)
}

// Delete removes a snapshot and reports whether it existed. Unknown ids are
// not an error and are not announced.
func (s *RecordService) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	if removed {
		s.announce(ctx, events.Deleted(id))
	}
	return removed, nil
}

func (s *RecordService) List(ctx context.Context) ([]core.SavingsRecord, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

func (s *RecordService) LatestRates(ctx context.Context) (core.Rates, error) {
	rates, err := s.store.LatestRates(ctx)
	if err != nil {
		return core.Rates{}, fmt.Errorf("latest rates: %w", err)
	}
	return rates, nil
}

func (s *RecordService) History(ctx context.Context) ([]core.HistoryEntry, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.History(recs), nil
}

func (s *RecordService) Summary(ctx context.Context) (core.Summary, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return core.Summary{}, err
	}
	return core.Summarize(recs), nil
}

func (s *RecordService) Trend(ctx context.Context) ([]core.TrendPoint, error) {
	recs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return core.Trend(recs), nil
}

// Ping checks the store when it is backed by something that can fail.
func (s *RecordService) Ping(ctx context.Context) error {
	p, ok := s.store.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}

func (s *RecordService) announce(ctx context.Context, e events.RecordEvent) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record event",
			"type", e.Type, "id", e.ID, "error", err)
	}
}

// Close releases the store and the publisher when they hold resources.
func (s *RecordService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
