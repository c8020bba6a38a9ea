package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gymchat/internal/domain"
)

type MessageRepository interface {
	// Create inserta el turno completo en un solo statement; ningun lector
	// puede observar un mensaje con campos parciales.
	Create(ctx context.Context, message domain.Message) error
	// ListByConversationID devuelve mensajes en orden de insercion. Con
	// limit > 0 devuelve solo los ultimos limit, manteniendo el orden.
	ListByConversationID(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO messages (id, conversation_id, user_text, bot_text, citations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	citations := message.Citations
	if citations == nil {
		citations = []string{}
	}
	citationsJSON, err := json.Marshal(citations)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, query,
		message.ID,
		message.ConversationID,
		message.UserText,
		message.BotText,
		citationsJSON,
		message.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) ListByConversationID(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	const query = `
		SELECT id, conversation_id, user_text, bot_text, citations, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY seq ASC
	`
	const queryLimited = `
		SELECT id, conversation_id, user_text, bot_text, citations, created_at
		FROM (
			SELECT id, conversation_id, user_text, bot_text, citations, created_at, seq
			FROM messages
			WHERE conversation_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC
	`

	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.pool.Query(ctx, queryLimited, conversationID, limit)
	} else {
		rows, err = r.pool.Query(ctx, query, conversationID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			msg          domain.Message
			citationsRaw []byte
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.ConversationID,
			&msg.UserText,
			&msg.BotText,
			&citationsRaw,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		msg.Citations = []string{}
		if len(citationsRaw) > 0 {
			if err := json.Unmarshal(citationsRaw, &msg.Citations); err != nil {
				msg.Citations = []string{}
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
