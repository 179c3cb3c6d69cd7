package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"savings/internal/config"
)

func TestRequirePersistentBackend(t *testing.T) {
	cases := []struct {
		backend string
		wantErr bool
	}{
		{"memory", true},
		{"", true},
		{"sqlite", false},
		{"postgres", false},
	}
	for _, tc := range cases {
		t.Run(tc.backend, func(t *testing.T) {
			err := RequirePersistentBackend(&config.Config{DataBackend: tc.backend})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
