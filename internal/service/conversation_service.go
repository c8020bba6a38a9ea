package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gymchat/internal/domain"
	"gymchat/internal/repository"
)

var ErrInvalidTitle = errors.New("invalid title")

// ConversationService encapsula el CRUD de conversaciones y la lectura de
// historial, con chequeo de pertenencia en cada operacion.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
}

func NewConversationService(conversations repository.ConversationRepository, messages repository.MessageRepository) *ConversationService {
	return &ConversationService{conversations: conversations, messages: messages}
}

// Create crea una conversacion con titulo opcional; sin titulo usa un
// placeholder fijo.
func (s *ConversationService) Create(ctx context.Context, userID, title string) (domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}

	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// ListForUser devuelve las conversaciones del usuario, mas recientes primero.
func (s *ConversationService) ListForUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	conversations, err := s.conversations.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}
	return conversations, nil
}

// Rename cambia solo el titulo.
func (s *ConversationService) Rename(ctx context.Context, userID, conversationID, title string) (domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Conversation{}, ErrInvalidTitle
	}

	conv, err := s.getOwned(ctx, userID, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}

	now := time.Now().UTC()
	if err := s.conversations.Rename(ctx, conv.ID, title, now); err != nil {
		return domain.Conversation{}, fmt.Errorf("rename conversation: %w", err)
	}
	conv.Title = title
	conv.UpdatedAt = now
	return conv, nil
}

// Delete elimina la conversacion y, por cascada, todos sus mensajes.
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID string) error {
	conv, err := s.getOwned(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if err := s.conversations.Delete(ctx, conv.ID); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// History devuelve el historial en orden cronologico, acotado opcionalmente
// a los ultimos limit mensajes. Una conversacion inexistente (por ejemplo,
// recien borrada) devuelve una secuencia vacia, no un error.
func (s *ConversationService) History(ctx context.Context, userID, conversationID string, limit int) ([]domain.Message, error) {
	conv, err := s.getOwned(ctx, userID, conversationID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			return []domain.Message{}, nil
		}
		return nil, err
	}

	messages, err := s.messages.ListByConversationID(ctx, conv.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

func (s *ConversationService) getOwned(ctx context.Context, userID, conversationID string) (domain.Conversation, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return domain.Conversation{}, ErrConversationNotFound
	}
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
