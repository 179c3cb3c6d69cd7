package records

import (
	"context"
	"fmt"

	"savings/internal/core"
)

// SeedIfEmpty adds the fixture snapshots to a store that holds none.
// It reports whether anything was inserted.
func SeedIfEmpty(ctx context.Context, s Store) (bool, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list records: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, in := range core.Fixtures() {
		if _, err := s.Add(ctx, in); err != nil {
			return false, fmt.Errorf("seed record %s: %w", in.Date, err)
		}
	}
	return true, nil
}
