package llm

import (
	"context"
	"errors"

	"gymchat/internal/domain"
)

// Retriever define la interfaz para recuperar pasajes relevantes del
// knowledge base. Devuelve como maximo max chunks, ordenados por relevancia
// descendente.
type Retriever interface {
	Retrieve(ctx context.Context, query string, max int) ([]domain.RetrievedChunk, error)
}

// Generator define la interfaz para generar texto con un LLM.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder convierte texto en un vector de embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

var (
	// ErrRetrieval marca fallas del servicio de retrieval. El orquestador lo
	// trata como degradacion, no como error fatal del request.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrGeneration marca fallas del servicio de generacion. El orquestador
	// sustituye un mensaje fijo en el idioma detectado.
	ErrGeneration = errors.New("generation failed")
)
