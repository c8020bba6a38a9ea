package domain

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// RetrievedChunk es el resultado efimero de una consulta al knowledge base.
// No se persiste; solo vive durante el request que lo produjo.
type RetrievedChunk struct {
	SourceURI string
	Score     float64
	Excerpt   string
}

// DocumentChunk es un fragmento de documento indexado en el vector store local.
type DocumentChunk struct {
	ID         string
	SourceURI  string
	ChunkIndex int
	Content    string
	Embedding  pgvector.Vector
	CreatedAt  time.Time
}
