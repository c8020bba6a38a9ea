package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gymchat/internal/domain"
	"gymchat/internal/llm"
	"gymchat/internal/repository"
)

var (
	ErrEmptyMessage         = errors.New("empty message")
	ErrConversationNotFound = errors.New("conversation not found")
)

const autoTitleMaxRunes = 60

// ChatService orquesta el pipeline RAG de un request de chat: deteccion de
// idioma, retrieval, armado de contexto, generacion y persistencia del turno.
// Cada request hace a lo sumo un intento contra cada servicio externo.
type ChatService struct {
	logger        *zap.Logger
	retriever     llm.Retriever
	generator     llm.Generator
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	maxResults    int
	historyLimit  int

	// Serializa escrituras concurrentes sobre la misma conversacion.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewChatService(
	logger *zap.Logger,
	retriever llm.Retriever,
	generator llm.Generator,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	maxResults int,
	historyLimit int,
) *ChatService {
	if maxResults <= 0 {
		maxResults = 3
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &ChatService{
		logger:        logger,
		retriever:     retriever,
		generator:     generator,
		conversations: conversations,
		messages:      messages,
		maxResults:    maxResults,
		historyLimit:  historyLimit,
		locks:         make(map[string]*sync.Mutex),
	}
}

// Chat procesa un mensaje de usuario y devuelve el turno persistido. Una
// falla de retrieval degrada a generacion sin contexto; una falla de
// generacion sustituye el mensaje de fallback en el idioma detectado. Solo
// una falla de persistencia aborta el request.
func (s *ChatService) Chat(ctx context.Context, userID, conversationID, message string) (domain.Message, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	conv, err := s.resolveConversation(ctx, userID, conversationID, message)
	if err != nil {
		return domain.Message{}, err
	}

	lock := s.conversationLock(conv.ID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.messages.ListByConversationID(ctx, conv.ID, s.historyLimit)
	if err != nil {
		return domain.Message{}, fmt.Errorf("list history: %w", err)
	}

	locale := ConversationLocale(message, history)

	chunks, err := s.retriever.Retrieve(ctx, message, s.maxResults)
	if err != nil {
		// Degradacion: sin contexto ni citas, pero el request sigue.
		s.logger.Warn("retrieval failed, continuing without context",
			zap.Error(err), zap.String("conversation_id", conv.ID))
		chunks = nil
	}

	labels := CitationLabels(chunks)
	prompt := BuildPrompt(locale, chunks, labels, history, message)

	botText, err := s.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(botText) == "" {
		if err != nil {
			s.logger.Error("generation failed, using fallback",
				zap.Error(err), zap.String("conversation_id", conv.ID))
		}
		botText = FallbackMessage(locale)
		labels = []string{}
	}

	now := time.Now().UTC()
	msg := domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		UserText:       message,
		BotText:        strings.TrimSpace(botText),
		Citations:      labels,
		CreatedAt:      now,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return domain.Message{}, fmt.Errorf("persist message: %w", err)
	}
	if err := s.conversations.Touch(ctx, conv.ID, now); err != nil {
		s.logger.Warn("touch conversation failed", zap.Error(err), zap.String("conversation_id", conv.ID))
	}

	return msg, nil
}

// resolveConversation carga la conversacion destino o crea una nueva cuando
// el request no trae id, titulandola con el primer mensaje.
func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID, message string) (domain.Conversation, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID != "" {
		conv, err := s.conversations.GetByID(ctx, conversationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Conversation{}, ErrConversationNotFound
			}
			return domain.Conversation{}, fmt.Errorf("get conversation: %w", err)
		}
		if conv.UserID != userID {
			return domain.Conversation{}, ErrConversationNotFound
		}
		return conv, nil
	}

	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     autoTitle(message),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

func (s *ChatService) conversationLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	return lock
}

func autoTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= autoTitleMaxRunes {
		return message
	}
	return string(runes[:autoTitleMaxRunes]) + "…"
}
