package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"gymchat/internal/config"
	"gymchat/internal/db"
	apihttp "gymchat/internal/http"
	"gymchat/internal/llm"
	"gymchat/internal/repository"
	"gymchat/internal/service"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
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
	runtimeClient := bedrockruntime.NewFromConfig(awsCfg)

	conversationRepo := repository.NewPgConversationRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)

	var retriever llm.Retriever
	if cfg.RetrieverBackend == "local" {
		embedder := llm.NewBedrockEmbedder(runtimeClient, cfg.EmbeddingModelID)
		documentRepo := repository.NewPgDocumentRepository(pool)
		retriever = service.NewLocalRetriever(embedder, documentRepo)
	} else {
		agentClient := bedrockagentruntime.NewFromConfig(awsCfg)
		retriever = llm.NewBedrockRetriever(agentClient, cfg.KnowledgeBaseID)
	}
	generator := llm.NewBedrockGenerator(runtimeClient, cfg.BedrockModelID, cfg.MaxTokensToSample, cfg.Temperature)

	var (
		tokenStore    service.RefreshTokenStore
		guestSessions service.GuestSessionStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			guestSessions = service.NewRedisGuestSessionStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, guestSessions)
	chatSvc := service.NewChatService(logger, retriever, generator, conversationRepo, messageRepo, cfg.MaxRetrievalResults, cfg.ChatHistoryLimit)
	convSvc := service.NewConversationService(conversationRepo, messageRepo)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc)
	convHandler := apihttp.NewConversationHandler(logger, convSvc)
	router := apihttp.NewRouter(logger, jwtSvc, userHandler, chatHandler, convHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("retriever", cfg.RetrieverBackend),
		zap.String("model", cfg.BedrockModelID),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
