package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuotaAllows(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		want  bool
	}{
		{"fresh day", 0, 50, true},
		{"one below limit", 49, 50, true},
		{"at limit", 50, 50, false},
		{"over limit", 51, 50, false},
		{"zero limit blocks everything", 0, 0, false},
		{"unbounded", 1000000, QuotaUnbounded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, quotaAllows(tt.used, tt.limit))
		})
	}
}
