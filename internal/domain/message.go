package domain

import "time"

// Message guarda un turno completo de conversacion: pregunta del usuario,
// respuesta del bot y las citas de los documentos usados. Es inmutable una
// vez persistido.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserText       string    `json:"user_text"`
	BotText        string    `json:"bot_text"`
	Citations      []string  `json:"citations"`
	CreatedAt      time.Time `json:"created_at"`
}
