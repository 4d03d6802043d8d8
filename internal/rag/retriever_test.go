package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/firmdesk/firmdesk-backend/internal/model"
)

type fakeEmbedder struct {
	embedding []float32
	err       error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.embedding, f.err
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

type fakeSearcher struct {
	chunks []model.DocumentChunk
	err    error
	calls  int
}

func (f *fakeSearcher) TopK(ctx context.Context, embedding []float32, k int) ([]model.DocumentChunk, error) {
	f.calls++
	return f.chunks, f.err
}

func TestRetrieveFormatsMatches(t *testing.T) {
	searcher := &fakeSearcher{chunks: []model.DocumentChunk{
		{Source: "rousseau-brief.txt", Content: "Rousseau retained the firm in 2024."},
		{Source: "rousseau-brief.txt", Content: "Engagement covers tax and audit."},
	}}
	r := NewRetriever(&fakeEmbedder{embedding: []float32{0.1, 0.2}}, searcher, 4)

	block := r.Retrieve(context.Background(), "rousseau")
	require.Equal(t,
		"[Source: rousseau-brief.txt]\nRousseau retained the firm in 2024."+
			blockSeparator+
			"[Source: rousseau-brief.txt]\nEngagement covers tax and audit.",
		block)
}

func TestRetrieveEmbeddingFailureReturnsEmpty(t *testing.T) {
	searcher := &fakeSearcher{}
	r := NewRetriever(&fakeEmbedder{err: errors.New("upstream down")}, searcher, 4)

	require.Empty(t, r.Retrieve(context.Background(), "rousseau"))
	require.Zero(t, searcher.calls)
}

func TestRetrieveSearchFailureReturnsEmpty(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("db gone")}
	r := NewRetriever(&fakeEmbedder{embedding: []float32{0.1}}, searcher, 4)

	require.Empty(t, r.Retrieve(context.Background(), "rousseau"))
}

func TestRetrieveNoMatchesReturnsEmpty(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{embedding: []float32{0.1}}, &fakeSearcher{}, 4)
	require.Empty(t, r.Retrieve(context.Background(), "rousseau"))
}
