package service

import (
	"strings"

	"gymchat/internal/domain"
)

// Heuristica de deteccion: listas fijas de marcadores del español. No es un
// clasificador estadistico; cualquier match clasifica como español y la
// ausencia total de señales cae en ingles.
var spanishWords = []string{
	"qué", "cómo", "dónde", "cuándo", "por qué", "quién", "cuál", "cuáles",
	"este", "esta", "estos", "estas", "ese", "esa", "esos", "esas",
	"aquel", "aquella", "aquellos", "aquellas",
	"con", "para", "por", "sin", "sobre", "entre", "hacia", "desde",
	"hasta", "durante", "según", "mediante", "contra", "bajo", "tras",
	"ante", "cabe", "so", "través", "versus", "vía",
}

var spanishChars = []rune{'ñ', 'á', 'é', 'í', 'ó', 'ú', 'ü', '¿', '¡'}

// DetectLocale clasifica el texto como español o ingles. Total: todo input
// resuelve a exactamente uno de los dos locales; vacio es ingles.
func DetectLocale(text string) domain.Locale {
	lower := strings.ToLower(text)

	for _, word := range spanishWords {
		if containsWord(lower, word) {
			return domain.LocaleSpanish
		}
	}
	for _, ch := range spanishChars {
		if strings.ContainsRune(lower, ch) {
			return domain.LocaleSpanish
		}
	}
	return domain.LocaleEnglish
}

// ConversationLocale decide el idioma de respuesta considerando tambien la
// conversacion reciente: si el mensaje actual no es claramente español, una
// mayoria de mensajes de usuario en español en los ultimos turnos mantiene
// la conversacion en español.
func ConversationLocale(current string, history []domain.Message) domain.Locale {
	if DetectLocale(current) == domain.LocaleSpanish {
		return domain.LocaleSpanish
	}

	recent := history
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	spanish, english := 0, 0
	for _, msg := range recent {
		if msg.UserText == "" {
			continue
		}
		if DetectLocale(msg.UserText) == domain.LocaleSpanish {
			spanish++
		} else {
			english++
		}
	}
	if spanish > english {
		return domain.LocaleSpanish
	}
	return domain.LocaleEnglish
}

// FallbackMessage es la respuesta fija cuando la generacion falla.
func FallbackMessage(locale domain.Locale) string {
	if locale == domain.LocaleSpanish {
		return "Lo siento, no pude generar una respuesta."
	}
	return "Sorry, I could not generate a response."
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordRune(rune(text[start-1]))
		afterOK := end == len(text) || !isWordRune(rune(text[end]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
