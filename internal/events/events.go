// Package events carries record change notifications inside the process.
package events

import (
	"time"

	EventBus "github.com/asaskevich/EventBus"
	"github.com/shopspring/decimal"

	"savings/internal/core"
)

const topicRecords = "records"

type Kind string

const (
	RecordCreated Kind = "record.created"
	RecordDeleted Kind = "record.deleted"
)

// RecordEvent describes one change to the record collection. It is also the
// JSON body published to the message broker and pushed to websocket clients.
type RecordEvent struct {
	Type      Kind             `json:"type"`
	ID        string           `json:"id"`
	Date      string           `json:"date,omitempty"`
	Total     *decimal.Decimal `json:"total,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Created builds the event for a freshly stored record.
func Created(r core.SavingsRecord) RecordEvent {
	total := r.Total
	return RecordEvent{
		Type:      RecordCreated,
		ID:        r.ID,
		Date:      r.Date.String(),
		Total:     &total,
		Timestamp: time.Now().UTC(),
	}
}

// Deleted builds the event for a delete request.
func Deleted(id string) RecordEvent {
	return RecordEvent{Type: RecordDeleted, ID: id, Timestamp: time.Now().UTC()}
}

// Bus fans record events out to in-process subscribers.
type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) Publish(e RecordEvent) {
	b.bus.Publish(topicRecords, e)
}

// Subscribe runs fn on the publishing goroutine.
func (b *Bus) Subscribe(fn func(RecordEvent)) error {
	return b.bus.Subscribe(topicRecords, fn)
}

// SubscribeAsync runs fn on its own goroutine per event.
func (b *Bus) SubscribeAsync(fn func(RecordEvent)) error {
	return b.bus.SubscribeAsync(topicRecords, fn, false)
}

// Wait blocks until every asynchronous handler has returned.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}
