package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gymchat/internal/config"
	"gymchat/internal/db"
	"gymchat/internal/domain"
	"gymchat/internal/llm"
	"gymchat/internal/repository"
	"gymchat/internal/service"
)

const cliUsername = "cli_local"

// Cliente de terminal para probar el pipeline completo sin levantar el API.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatal(err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatal(err)
	}
	runtimeClient := bedrockruntime.NewFromConfig(awsCfg)

	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)

	var retriever llm.Retriever
	if cfg.RetrieverBackend == "local" {
		retriever = service.NewLocalRetriever(
			llm.NewBedrockEmbedder(runtimeClient, cfg.EmbeddingModelID),
			repository.NewPgDocumentRepository(pool),
		)
	} else {
		retriever = llm.NewBedrockRetriever(bedrockagentruntime.NewFromConfig(awsCfg), cfg.KnowledgeBaseID)
	}
	generator := llm.NewBedrockGenerator(runtimeClient, cfg.BedrockModelID, cfg.MaxTokensToSample, cfg.Temperature)

	chatSvc := service.NewChatService(logger, retriever, generator, conversationRepo, messageRepo, cfg.MaxRetrievalResults, cfg.ChatHistoryLimit)

	user, err := ensureUser(ctx, userRepo)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("gymchat cli — escribe tu pregunta, o 'exit' para salir")

	conversationID := ""
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			return
		}

		msg, err := chatSvc.Chat(ctx, user.ID, conversationID, line)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		conversationID = msg.ConversationID

		fmt.Println(msg.BotText)
		if len(msg.Citations) > 0 {
			fmt.Printf("fuentes: %s\n", strings.Join(msg.Citations, ", "))
		}
	}
}

func ensureUser(ctx context.Context, users repository.UserRepository) (domain.User, error) {
	user, err := users.GetByUsername(ctx, cliUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:        uuid.NewString(),
		Username:  cliUsername,
		IsGuest:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}
