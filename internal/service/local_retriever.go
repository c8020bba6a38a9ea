package service

import (
	"context"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"gymchat/internal/domain"
	"gymchat/internal/llm"
	"gymchat/internal/repository"
)

// LocalRetriever implementa llm.Retriever sobre el indice pgvector local:
// embebe la consulta y busca por distancia coseno en document_chunks.
type LocalRetriever struct {
	embedder  llm.Embedder
	documents repository.DocumentRepository
}

func NewLocalRetriever(embedder llm.Embedder, documents repository.DocumentRepository) *LocalRetriever {
	return &LocalRetriever{embedder: embedder, documents: documents}
}

func (r *LocalRetriever) Retrieve(ctx context.Context, query string, max int) ([]domain.RetrievedChunk, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", llm.ErrRetrieval, err)
	}

	chunks, err := r.documents.Search(ctx, pgvector.NewVector(embedding), max)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", llm.ErrRetrieval, err)
	}
	return chunks, nil
}
