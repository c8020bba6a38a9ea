package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"gymchat/internal/config"
	"gymchat/internal/db"
	"gymchat/internal/domain"
	"gymchat/internal/llm"
	"gymchat/internal/repository"
)

const chunkMaxRunes = 1200

// Ingesta offline: recorre un directorio de documentos markdown/texto,
// embebe cada fragmento con Titan y lo indexa en pgvector para el retriever
// local.
func main() {
	dir := flag.String("dir", "./docs", "directorio con documentos .md/.txt")
	flag.Parse()

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal("aws config", zap.Error(err))
	}
	embedder := llm.NewBedrockEmbedder(bedrockruntime.NewFromConfig(awsCfg), cfg.EmbeddingModelID)
	documentRepo := repository.NewPgDocumentRepository(pool)

	var files, chunks int
	err = filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}

		n, err := ingestFile(ctx, path, embedder, documentRepo)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		logger.Info("ingested", zap.String("file", path), zap.Int("chunks", n))
		files++
		chunks += n
		return nil
	})
	if err != nil {
		logger.Fatal("ingest", zap.Error(err))
	}

	logger.Info("done", zap.Int("files", files), zap.Int("chunks", chunks))
}

func ingestFile(ctx context.Context, path string, embedder llm.Embedder, documents repository.DocumentRepository) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	// Re-indexar un documento reemplaza sus fragmentos anteriores.
	if err := documents.DeleteBySourceURI(ctx, path); err != nil {
		return 0, err
	}

	pieces := chunkText(string(raw), chunkMaxRunes)
	for i, piece := range pieces {
		embedding, err := embedder.Embed(ctx, piece)
		if err != nil {
			return 0, err
		}
		chunk := domain.DocumentChunk{
			ID:         uuid.NewString(),
			SourceURI:  path,
			ChunkIndex: i,
			Content:    piece,
			Embedding:  pgvector.NewVector(embedding),
			CreatedAt:  time.Now().UTC(),
		}
		if err := documents.Upsert(ctx, chunk); err != nil {
			return 0, err
		}
	}
	return len(pieces), nil
}

// chunkText agrupa parrafos hasta un presupuesto de runas por fragmento. Un
// parrafo que excede el presupuesto va solo en su propio fragmento.
func chunkText(text string, maxRunes int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
		size = 0
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		runes := len([]rune(p))
		if size > 0 && size+runes > maxRunes {
			flush()
		}
		if size > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
		size += runes
	}
	flush()
	return chunks
}
