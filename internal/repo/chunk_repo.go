package repo

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"github.com/firmdesk/firmdesk-backend/internal/model"
)

type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) Save(ctx context.Context, chunk *model.DocumentChunk) error {
	const query = `
		INSERT INTO document_chunks (id, source, content, embedding, chunk_index, total_chunks, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			chunk_index = EXCLUDED.chunk_index,
			total_chunks = EXCLUDED.total_chunks,
			uploaded_at = EXCLUDED.uploaded_at
	`
	_, err := r.db.ExecContext(ctx, query,
		chunk.ID,
		chunk.Source,
		chunk.Content,
		pgvector.NewVector(chunk.Embedding),
		chunk.ChunkIndex,
		chunk.TotalChunks,
		chunk.UploadedAt,
	)
	return err
}

// TopK returns the k stored chunks nearest to the query embedding by cosine
// distance.
func (r *ChunkRepo) TopK(ctx context.Context, embedding []float32, k int) ([]model.DocumentChunk, error) {
	const query = `
		SELECT id, source, content, chunk_index, total_chunks, uploaded_at
		FROM document_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, pgvector.NewVector(embedding), k)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

// ListAll returns every chunk row without content or embedding, for grouped
// document listings.
func (r *ChunkRepo) ListAll(ctx context.Context) ([]model.DocumentChunk, error) {
	const query = `
		SELECT id, source, '', chunk_index, total_chunks, uploaded_at
		FROM document_chunks
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

// ListByBaseID returns the ordered chunks of one logical document, matched by
// the shared "<base>-chunk-" id prefix.
func (r *ChunkRepo) ListByBaseID(ctx context.Context, baseID string) ([]model.DocumentChunk, error) {
	const query = `
		SELECT id, source, content, chunk_index, total_chunks, uploaded_at
		FROM document_chunks
		WHERE id LIKE $1
		ORDER BY chunk_index
	`
	rows, err := r.db.QueryContext(ctx, query, baseID+"-chunk-%")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	return scanChunks(rows)
}

func (r *ChunkRepo) DeleteByBaseID(ctx context.Context, baseID string) (int64, error) {
	const query = `DELETE FROM document_chunks WHERE id LIKE $1`
	res, err := r.db.ExecContext(ctx, query, baseID+"-chunk-%")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanChunks(rows *sql.Rows) ([]model.DocumentChunk, error) {
	var chunks []model.DocumentChunk
	for rows.Next() {
		var chunk model.DocumentChunk
		if err := rows.Scan(
			&chunk.ID, &chunk.Source, &chunk.Content,
			&chunk.ChunkIndex, &chunk.TotalChunks, &chunk.UploadedAt,
		); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}
