// Package records declares the ports every savings record backend implements.
package records

import (
	"context"

	"github.com/google/uuid"

	"savings/internal/core"
)

// Ports for record backends.
type (
	RecordWriter interface {
		// Add stores a new snapshot under a freshly generated id.
		Add(ctx context.Context, in core.RecordInput) (core.SavingsRecord, error)
	}

	RecordDeleter interface {
		// Delete removes the snapshot with the given id and reports whether
		// one existed. Unknown ids are not an error.
		Delete(ctx context.Context, id string) (bool, error)
	}

	RecordLister interface {
		// List returns every snapshot, most recent date first.
		List(ctx context.Context) ([]core.SavingsRecord, error)
	}

	RatesReader interface {
		// LatestRates returns the conversion values of the most recent snapshot.
		LatestRates(ctx context.Context) (core.Rates, error)
	}

	// Store is the full record backend.
	Store interface {
		RecordWriter
		RecordDeleter
		RecordLister
		RatesReader
	}
)

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}
