package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"gymchat/internal/domain"
)

type DocumentRepository interface {
	Upsert(ctx context.Context, chunk domain.DocumentChunk) error
	// Search devuelve los k fragmentos mas cercanos por distancia coseno.
	Search(ctx context.Context, queryEmbedding pgvector.Vector, k int) ([]domain.RetrievedChunk, error)
	DeleteBySourceURI(ctx context.Context, sourceURI string) error
}

type PgDocumentRepository struct {
	pool *pgxpool.Pool
}

func NewPgDocumentRepository(pool *pgxpool.Pool) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

func (r *PgDocumentRepository) Upsert(ctx context.Context, chunk domain.DocumentChunk) error {
	const query = `
		INSERT INTO document_chunks (id, source_uri, chunk_index, content, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (source_uri, chunk_index)
		DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding
	`
	_, err := r.pool.Exec(ctx, query,
		chunk.ID,
		chunk.SourceURI,
		chunk.ChunkIndex,
		chunk.Content,
		chunk.Embedding,
		chunk.CreatedAt,
	)
	return err
}

func (r *PgDocumentRepository) Search(ctx context.Context, queryEmbedding pgvector.Vector, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = 3
	}
	const query = `
		SELECT source_uri, content, 1 - (embedding <=> $1) AS score
		FROM document_chunks
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, queryEmbedding, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []domain.RetrievedChunk
	for rows.Next() {
		var chunk domain.RetrievedChunk
		if err := rows.Scan(&chunk.SourceURI, &chunk.Excerpt, &chunk.Score); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (r *PgDocumentRepository) DeleteBySourceURI(ctx context.Context, sourceURI string) error {
	const query = `DELETE FROM document_chunks WHERE source_uri = $1`
	_, err := r.pool.Exec(ctx, query, sourceURI)
	return err
}
