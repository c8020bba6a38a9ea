package service

import (
	"strings"
	"testing"

	"gymchat/internal/domain"
)

func TestBuildPrompt_WithContext(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{SourceURI: "s3://kb/guides/Strength.pdf", Excerpt: "Progressive overload drives adaptation."},
		{SourceURI: "s3://kb/guides/Cardio.pdf", Excerpt: "Zone 2 builds aerobic base."},
	}
	labels := CitationLabels(chunks)

	prompt := BuildPrompt(domain.LocaleEnglish, chunks, labels, nil, "How do I get stronger?")

	for _, want := range []string{
		"Based on the following information:",
		"Document 1:\nProgressive overload drives adaptation.",
		"Document 2:\nZone 2 builds aerobic base.",
		"Source documents:",
		"Document 1: Strength",
		"Document 2: Cardio",
		"in English",
		"How do I get stronger?",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_SpanishWording(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{SourceURI: "s3://kb/guias/Fuerza.pdf", Excerpt: "La sobrecarga progresiva."},
	}
	prompt := BuildPrompt(domain.LocaleSpanish, chunks, CitationLabels(chunks), nil, "¿Cómo me hago más fuerte?")

	if !strings.Contains(prompt, "Basándote en la siguiente información:") {
		t.Fatalf("expected spanish preamble:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Documentos fuente:") {
		t.Fatalf("expected spanish source list header:\n%s", prompt)
	}
	if !strings.Contains(prompt, "en español") {
		t.Fatalf("expected spanish language instruction:\n%s", prompt)
	}
}

func TestBuildPrompt_NoContextVariant(t *testing.T) {
	prompt := BuildPrompt(domain.LocaleEnglish, nil, nil, nil, "What is creatine?")

	if !strings.Contains(prompt, "Please answer the following question.") {
		t.Fatalf("expected no-context preamble:\n%s", prompt)
	}
	if strings.Contains(prompt, "Source documents:") {
		t.Fatalf("no-context prompt must not list sources:\n%s", prompt)
	}
	if !strings.HasSuffix(prompt, "What is creatine?") {
		t.Fatalf("prompt must end with the user question:\n%s", prompt)
	}
}

func TestBuildPrompt_IncludesHistoryTranscript(t *testing.T) {
	history := []domain.Message{
		{UserText: "how often should I train?", BotText: "Three to five times a week."},
	}
	prompt := BuildPrompt(domain.LocaleEnglish, nil, nil, history, "and how long per session?")

	if !strings.Contains(prompt, "User: how often should I train?") {
		t.Fatalf("expected user turn in transcript:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Assistant: Three to five times a week.") {
		t.Fatalf("expected assistant turn in transcript:\n%s", prompt)
	}
}
