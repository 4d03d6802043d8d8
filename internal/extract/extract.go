package extract

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrUnsupportedType is returned for file formats this layer does not parse.
// Binary formats (DOCX, XLSX, PDF, images) are deliberately not handled here.
var ErrUnsupportedType = errors.New("unsupported file type")

var extByKind = map[string]string{
	".txt":      "text",
	".text":     "text",
	".log":      "text",
	".csv":      "text",
	".json":     "text",
	".md":       "markdown",
	".markdown": "markdown",
}

var mimeByKind = map[string]string{
	"text/plain":       "text",
	"text/csv":         "text",
	"application/json": "text",
	"text/markdown":    "markdown",
}

// Supported reports whether Text can handle the file, judged by extension
// first and declared content type second.
func Supported(filename, contentType string) bool {
	_, err := kindOf(filename, contentType)
	return err == nil
}

// Text extracts plain text from an uploaded file. Markdown is flattened to
// its text content; plain text, CSV and JSON pass through verbatim.
func Text(filename, contentType string, data []byte) (string, error) {
	kind, err := kindOf(filename, contentType)
	if err != nil {
		return "", err
	}
	switch kind {
	case "markdown":
		return markdownText(data), nil
	default:
		return string(data), nil
	}
}

func kindOf(filename, contentType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if kind, ok := extByKind[ext]; ok {
		return kind, nil
	}
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(mediaType, ";"); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}
	if kind, ok := mimeByKind[mediaType]; ok {
		return kind, nil
	}
	return "", ErrUnsupportedType
}

func markdownText(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var parts []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if txt := nodeText(node, source); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n\n")
}

func nodeText(n ast.Node, source []byte) string {
	if fenced, ok := n.(*ast.FencedCodeBlock); ok {
		var sb strings.Builder
		for i := 0; i < fenced.Lines().Len(); i++ {
			line := fenced.Lines().At(i)
			sb.Write(line.Value(source))
		}
		return strings.TrimSpace(sb.String())
	}
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			if node.(*ast.Text).SoftLineBreak() || node.(*ast.Text).HardLineBreak() {
				sb.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
