package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        bool
	}{
		{"txt by extension", "notes.txt", "", true},
		{"markdown by extension", "brief.md", "", true},
		{"csv by extension", "clients.csv", "", true},
		{"json by extension", "export.json", "", true},
		{"plain by content type", "noext", "text/plain; charset=utf-8", true},
		{"markdown by content type", "noext", "text/markdown", true},
		{"pdf rejected", "contract.pdf", "application/pdf", false},
		{"docx rejected", "contract.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", false},
		{"image rejected", "scan.png", "image/png", false},
		{"nothing known", "mystery", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Supported(tt.filename, tt.contentType))
		})
	}
}

func TestTextPlainPassThrough(t *testing.T) {
	got, err := Text("notes.txt", "", []byte("line one\nline two"))
	require.NoError(t, err)
	require.Equal(t, "line one\nline two", got)
}

func TestTextMarkdownFlattened(t *testing.T) {
	src := "# Rousseau brief\n\nRetained in *2024* for [tax](https://example.com) work.\n\n```\ncode stays\n```\n"
	got, err := Text("brief.md", "", []byte(src))
	require.NoError(t, err)
	require.Contains(t, got, "Rousseau brief")
	require.Contains(t, got, "Retained in 2024 for tax work.")
	require.Contains(t, got, "code stays")
	require.NotContains(t, got, "#")
	require.NotContains(t, got, "*2024*")
}

func TestTextUnsupported(t *testing.T) {
	_, err := Text("contract.pdf", "application/pdf", []byte("%PDF"))
	require.ErrorIs(t, err, ErrUnsupportedType)
}
