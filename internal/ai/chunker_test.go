package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		max      int
		wantLens []int
	}{
		{
			name:     "fits in one chunk",
			text:     "short text",
			max:      100,
			wantLens: []int{10},
		},
		{
			name:     "exact boundary",
			text:     strings.Repeat("a", 8000),
			max:      8000,
			wantLens: []int{8000},
		},
		{
			name:     "splits with remainder",
			text:     strings.Repeat("x", 20000),
			max:      8000,
			wantLens: []int{8000, 8000, 4000},
		},
		{
			name:     "empty input",
			text:     "",
			max:      8000,
			wantLens: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitChunks(tt.text, tt.max)
			require.Len(t, chunks, len(tt.wantLens))
			for i, chunk := range chunks {
				require.Len(t, []rune(chunk), tt.wantLens[i])
			}
			require.Equal(t, tt.text, strings.Join(chunks, ""))
		})
	}
}

func TestSplitChunksMultibyte(t *testing.T) {
	text := strings.Repeat("é", 10)
	chunks := SplitChunks(text, 4)
	require.Equal(t, []string{"éééé", "éééé", "éé"}, chunks)
	require.Equal(t, text, strings.Join(chunks, ""))
}
