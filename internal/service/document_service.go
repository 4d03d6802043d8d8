package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/firmdesk/firmdesk-backend/internal/ai"
	"github.com/firmdesk/firmdesk-backend/internal/model"
	appErr "github.com/firmdesk/firmdesk-backend/internal/pkg/errors"
	"github.com/firmdesk/firmdesk-backend/internal/pkg/timeutil"
	"github.com/firmdesk/firmdesk-backend/internal/repo"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const embedTaskDocument = "RETRIEVAL_DOCUMENT"

// DocumentService owns the ingestion pipeline: split, embed, store. Every
// operation is gated on the caller's resolved capabilities.
type DocumentService struct {
	chunks       *repo.ChunkRepo
	perms        *PermissionService
	embedder     ai.IEmbedder
	maxChunkSize int
}

func NewDocumentService(chunks *repo.ChunkRepo, perms *PermissionService, embedder ai.IEmbedder, maxChunkSize int) *DocumentService {
	return &DocumentService{
		chunks:       chunks,
		perms:        perms,
		embedder:     embedder,
		maxChunkSize: maxChunkSize,
	}
}

type IngestRequest struct {
	// ID is the logical document id; derived from Source when empty.
	ID      string `json:"id"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

type IngestResult struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
}

// Ingest splits the document, embeds every chunk, and upserts them under
// ids "<base>-chunk-<index>". All chunks are embedded before anything is
// written, so an embedding failure leaves the store untouched. First upload
// of a document requires upload_documents; replacing an existing one
// requires edit_documents.
func (s *DocumentService) Ingest(ctx context.Context, userID string, req IngestRequest) (*IngestResult, error) {
	caps, _, err := s.perms.Effective(ctx, userID)
	if err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("document content is required: %w", appErr.ErrInvalid)
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return nil, fmt.Errorf("document source is required: %w", appErr.ErrInvalid)
	}
	baseID := strings.TrimSpace(req.ID)
	if baseID == "" {
		baseID = slugify(source)
	}

	existing, err := s.chunks.ListByBaseID(ctx, baseID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !caps.EditDocuments {
			return nil, fmt.Errorf("document %s already exists: %w", baseID, appErr.ErrForbidden)
		}
	} else if !caps.UploadDocuments {
		return nil, appErr.ErrForbidden
	}

	parts := ai.SplitChunks(content, s.maxChunkSize)
	now := timeutil.NowUnix()
	chunks := make([]*model.DocumentChunk, 0, len(parts))
	for i, part := range parts {
		embedding, err := s.embedder.Embed(ctx, part, embedTaskDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d of %s: %w", i, baseID, err)
		}
		chunks = append(chunks, &model.DocumentChunk{
			ID:          chunkID(baseID, i),
			Source:      source,
			Content:     part,
			Embedding:   embedding,
			ChunkIndex:  i,
			TotalChunks: len(parts),
			UploadedAt:  now,
		})
	}
	// Replacements drop the old rows first so a shrinking document leaves no
	// stale high-index chunks behind.
	if len(existing) > 0 {
		if _, err := s.chunks.DeleteByBaseID(ctx, baseID); err != nil {
			return nil, err
		}
	}
	for _, chunk := range chunks {
		if err := s.chunks.Save(ctx, chunk); err != nil {
			return nil, err
		}
	}
	logutil.GetLogger(ctx).Info("document ingested",
		zap.String("id", baseID), zap.Int("chunks", len(parts)))
	return &IngestResult{ID: baseID, Source: source, ChunkCount: len(parts)}, nil
}

// List returns grouped per-document summaries.
func (s *DocumentService) List(ctx context.Context, userID string) ([]model.DocumentSummary, error) {
	caps, _, err := s.perms.Effective(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !caps.UseRetrieval {
		return nil, appErr.ErrForbidden
	}
	chunks, err := s.chunks.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return groupSummaries(chunks), nil
}

// Get reassembles one logical document from its ordered chunks.
func (s *DocumentService) Get(ctx context.Context, userID, baseID string) (*model.DocumentChunk, error) {
	caps, _, err := s.perms.Effective(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !caps.UseRetrieval {
		return nil, appErr.ErrForbidden
	}
	chunks, err := s.chunks.ListByBaseID(ctx, baseID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, appErr.ErrNotFound
	}
	var sb strings.Builder
	for _, chunk := range chunks {
		sb.WriteString(chunk.Content)
	}
	return &model.DocumentChunk{
		ID:          baseID,
		Source:      chunks[0].Source,
		Content:     sb.String(),
		TotalChunks: len(chunks),
		UploadedAt:  chunks[0].UploadedAt,
	}, nil
}

// Delete removes every chunk of the document.
func (s *DocumentService) Delete(ctx context.Context, userID, baseID string) error {
	caps, _, err := s.perms.Effective(ctx, userID)
	if err != nil {
		return err
	}
	if !caps.DeleteDocuments {
		return appErr.ErrForbidden
	}
	affected, err := s.chunks.DeleteByBaseID(ctx, baseID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	logutil.GetLogger(ctx).Info("document deleted",
		zap.String("id", baseID), zap.Int64("chunks", affected))
	return nil
}

func chunkID(baseID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", baseID, index)
}

var chunkSuffixRe = regexp.MustCompile(`-chunk-\d+$`)

// baseIDOf strips the "-chunk-<n>" suffix from a stored chunk id.
func baseIDOf(chunkID string) string {
	return chunkSuffixRe.ReplaceAllString(chunkID, "")
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(source string) string {
	slug := strings.ToLower(source)
	if idx := strings.LastIndex(slug, "."); idx > 0 {
		slug = slug[:idx]
	}
	slug = strings.Trim(slugRe.ReplaceAllString(slug, "-"), "-")
	if slug == "" {
		return newID()
	}
	return slug
}

func groupSummaries(chunks []model.DocumentChunk) []model.DocumentSummary {
	byBase := map[string]*model.DocumentSummary{}
	for _, chunk := range chunks {
		base := baseIDOf(chunk.ID)
		summary, ok := byBase[base]
		if !ok {
			summary = &model.DocumentSummary{ID: base, Source: chunk.Source}
			byBase[base] = summary
		}
		summary.ChunkCount++
		if chunk.UploadedAt > summary.UploadedAt {
			summary.UploadedAt = chunk.UploadedAt
		}
	}
	out := make([]model.DocumentSummary, 0, len(byBase))
	for _, summary := range byBase {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt != out[j].UploadedAt {
			return out[i].UploadedAt > out[j].UploadedAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}
