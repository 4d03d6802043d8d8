package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/firmdesk/firmdesk-backend/internal/ai"
	"github.com/firmdesk/firmdesk-backend/internal/model"
)

const blockSeparator = "\n\n---\n\n"

// ChunkSearcher is the nearest-neighbor query the retriever delegates to
// the vector store. *repo.ChunkRepo satisfies it.
type ChunkSearcher interface {
	TopK(ctx context.Context, embedding []float32, k int) ([]model.DocumentChunk, error)
}

// Retriever embeds a query and fetches the topK most similar stored chunks,
// formatted as a single labeled context block.
type Retriever struct {
	embedder ai.IEmbedder
	searcher ChunkSearcher
	topK     int
}

func NewRetriever(embedder ai.IEmbedder, searcher ChunkSearcher, topK int) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{embedder: embedder, searcher: searcher, topK: topK}
}

// Retrieve returns the formatted context block for a query. Any failure in
// embedding or querying degrades to an empty block: a chat turn must never
// abort because retrieval is down.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	logger := logutil.GetLogger(ctx)
	embedding, err := r.embedder.Embed(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		logger.Warn("query embedding failed, continuing without context", zap.Error(err))
		return ""
	}
	chunks, err := r.searcher.TopK(ctx, embedding, r.topK)
	if err != nil {
		logger.Warn("vector search failed, continuing without context", zap.Error(err))
		return ""
	}
	if len(chunks) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, formatBlock(chunk))
	}
	logger.Debug("context retrieved", zap.Int("chunks", len(chunks)))
	return strings.Join(blocks, blockSeparator)
}

func formatBlock(chunk model.DocumentChunk) string {
	return fmt.Sprintf("[Source: %s]\n%s", chunk.Source, chunk.Content)
}
