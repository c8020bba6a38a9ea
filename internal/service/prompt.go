package service

import (
	"fmt"
	"strings"

	"gymchat/internal/domain"
)

// BuildPrompt ensambla el prompt de generacion: contexto recuperado con
// documentos numerados, lista de fuentes, instruccion de idioma, transcripcion
// reciente y la pregunta actual. Sin chunks produce la variante sin contexto.
func BuildPrompt(locale domain.Locale, chunks []domain.RetrievedChunk, labels []string, history []domain.Message, userMessage string) string {
	var sb strings.Builder

	if len(chunks) > 0 {
		if locale == domain.LocaleSpanish {
			sb.WriteString("Basándote en la siguiente información:\n\n")
		} else {
			sb.WriteString("Based on the following information:\n\n")
		}

		for i, chunk := range chunks {
			sb.WriteString(fmt.Sprintf("Document %d:\n%s\n\n", i+1, chunk.Excerpt))
		}

		if len(labels) > 0 {
			if locale == domain.LocaleSpanish {
				sb.WriteString("Documentos fuente:\n")
			} else {
				sb.WriteString("Source documents:\n")
			}
			for i, label := range labels {
				sb.WriteString(fmt.Sprintf("Document %d: %s\n", i+1, label))
			}
			sb.WriteString("\n")
		}

		sb.WriteString(languageInstruction(locale))
		sb.WriteString("\n\n")
	} else {
		if locale == domain.LocaleSpanish {
			sb.WriteString("Por favor responde la siguiente pregunta. Si no tienes información específica sobre este tema, por favor indícalo:\n\n")
		} else {
			sb.WriteString("Please answer the following question. If you don't have specific information about this topic, please say so:\n\n")
		}
	}

	if transcript := historyTranscript(history); transcript != "" {
		if locale == domain.LocaleSpanish {
			sb.WriteString("Conversación reciente:\n")
		} else {
			sb.WriteString("Recent conversation:\n")
		}
		sb.WriteString(transcript)
		sb.WriteString("\n\n")
	}

	sb.WriteString(userMessage)
	return sb.String()
}

// languageInstruction pide responder solo la pregunta actual, en el idioma
// detectado, sin inventar citas.
func languageInstruction(locale domain.Locale) string {
	if locale == domain.LocaleSpanish {
		return "Por favor responde solamente la pregunta siguiente, en español, usando la información proporcionada arriba cuando sea relevante. No inventes citas ni documentos que no aparezcan en la lista."
	}
	return "Please answer only the following question, in English, using the information provided above when relevant. Do not invent citations or documents that are not in the list."
}

func historyTranscript(history []domain.Message) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history)*2)
	for _, msg := range history {
		if msg.UserText != "" {
			lines = append(lines, "User: "+msg.UserText)
		}
		if msg.BotText != "" {
			lines = append(lines, "Assistant: "+msg.BotText)
		}
	}
	return strings.Join(lines, "\n")
}
