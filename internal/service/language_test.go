package service

import (
	"testing"

	"gymchat/internal/domain"
)

func TestDetectLocale(t *testing.T) {
	cases := []struct {
		name string
		text string
		want domain.Locale
	}{
		{"pregunta en español", "¿Cuáles son los beneficios?", domain.LocaleSpanish},
		{"pregunta en ingles", "What are the benefits?", domain.LocaleEnglish},
		{"vacio", "", domain.LocaleEnglish},
		{"solo caracter marcador", "ñ", domain.LocaleSpanish},
		{"palabra marcadora sin acentos", "rutina para principiantes", domain.LocaleSpanish},
		{"signo de apertura", "¡Hola!", domain.LocaleSpanish},
		{"ingles con palabra que contiene marcador", "I signed the contract yesterday", domain.LocaleEnglish},
		{"mayusculas", "¿CÓMO FUNCIONA?", domain.LocaleSpanish},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectLocale(tc.text); got != tc.want {
				t.Fatalf("DetectLocale(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestConversationLocale(t *testing.T) {
	t.Run("mensaje actual en español gana", func(t *testing.T) {
		history := []domain.Message{
			{UserText: "how often should I train?"},
		}
		if got := ConversationLocale("¿y cuánto descanso?", history); got != domain.LocaleSpanish {
			t.Fatalf("expected spanish, got %q", got)
		}
	})

	t.Run("historial en español mantiene el idioma", func(t *testing.T) {
		history := []domain.Message{
			{UserText: "¿qué ejercicios recomiendas?"},
			{UserText: "¿cuántas series hago?"},
			{UserText: "ok"},
		}
		if got := ConversationLocale("ok thanks", history); got != domain.LocaleSpanish {
			t.Fatalf("expected spanish from history, got %q", got)
		}
	})

	t.Run("solo cuentan los ultimos tres turnos", func(t *testing.T) {
		history := []domain.Message{
			{UserText: "¿qué ejercicios recomiendas?"},
			{UserText: "thanks"},
			{UserText: "what about cardio"},
			{UserText: "and stretching"},
		}
		if got := ConversationLocale("more please", history); got != domain.LocaleEnglish {
			t.Fatalf("expected english, got %q", got)
		}
	})

	t.Run("sin historial ni señales cae en ingles", func(t *testing.T) {
		if got := ConversationLocale("hello", nil); got != domain.LocaleEnglish {
			t.Fatalf("expected english, got %q", got)
		}
	})
}

func TestFallbackMessage(t *testing.T) {
	if got := FallbackMessage(domain.LocaleSpanish); got != "Lo siento, no pude generar una respuesta." {
		t.Fatalf("unexpected spanish fallback: %q", got)
	}
	if got := FallbackMessage(domain.LocaleEnglish); got != "Sorry, I could not generate a response." {
		t.Fatalf("unexpected english fallback: %q", got)
	}
}
