// Package backend builds the record store selected by configuration.
package backend

import (
	"context"

	"savings/internal/records"
	"savings/internal/services"
)

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the store, the optional event publisher and the
// function releasing both.
type BackendResult struct {
	Store     records.Store
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Close runs Cleanup when there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string
	// SeedFixtures inserts the sample snapshots into an empty persistent
	// store. The memory store is always seeded.
	SeedFixtures bool

	// AMQP is optional; an empty URL disables publishing.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// Persistent reports whether data outlives the process.
func (bt BackendType) Persistent() bool {
	return bt == SQLiteBackend || bt == PostgresBackend
}
