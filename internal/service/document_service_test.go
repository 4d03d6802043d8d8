package service

import (
	"testing"

	"github.com/firmdesk/firmdesk-backend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestChunkIDRoundTrip(t *testing.T) {
	require.Equal(t, "acme-brief-chunk-0", chunkID("acme-brief", 0))
	require.Equal(t, "acme-brief", baseIDOf("acme-brief-chunk-0"))
	require.Equal(t, "acme-brief", baseIDOf("acme-brief-chunk-12"))
	// No suffix means the id is already a base id.
	require.Equal(t, "acme-brief", baseIDOf("acme-brief"))
	// Only a trailing numeric suffix is stripped.
	require.Equal(t, "a-chunk-1-chunk-notnum", baseIDOf("a-chunk-1-chunk-notnum"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Rousseau Brief.txt", "rousseau-brief"},
		{"clients/2024 Q3.md", "clients-2024-q3"},
		{"UPPER_case.name.csv", "upper-case-name"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, slugify(tt.in))
	}
	// Degenerate names still yield a usable id.
	require.NotEmpty(t, slugify("...."))
}

func TestGroupSummaries(t *testing.T) {
	chunks := []model.DocumentChunk{
		{ID: "brief-chunk-0", Source: "brief.txt", UploadedAt: 100},
		{ID: "brief-chunk-1", Source: "brief.txt", UploadedAt: 100},
		{ID: "brief-chunk-2", Source: "brief.txt", UploadedAt: 100},
		{ID: "memo-chunk-0", Source: "memo.md", UploadedAt: 200},
	}
	got := groupSummaries(chunks)
	require.Len(t, got, 2)
	require.Equal(t, "memo", got[0].ID, "newest upload first")
	require.Equal(t, 1, got[0].ChunkCount)
	require.Equal(t, "brief", got[1].ID)
	require.Equal(t, 3, got[1].ChunkCount)
	require.Equal(t, "brief.txt", got[1].Source)
}

func TestGroupSummariesEmpty(t *testing.T) {
	require.Empty(t, groupSummaries(nil))
}
