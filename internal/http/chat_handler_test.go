package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gymchat/internal/domain"
	"gymchat/internal/llm"
)

func postChat(t *testing.T, env *testEnv, token string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint_RespondsWithCitations(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "u1", "ana")
	env.seedConversation(t, "c1", "u1", "rutinas")

	env.retriever.Chunks = []domain.RetrievedChunk{
		{SourceURI: "s3://kb/guides/Doc1.pdf", Excerpt: "progressive overload"},
		{SourceURI: "s3://kb/guides/Doc2.pdf", Excerpt: "rest days"},
	}
	env.generator.Response = "Train hard, rest well."

	rec := postChat(t, env, token, map[string]any{
		"message":         "how do I get stronger?",
		"conversation_id": "c1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Response       string   `json:"response"`
		Citations      []string `json:"citations"`
		ConversationID string   `json:"conversation_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Response != "Train hard, rest well." {
		t.Fatalf("unexpected response text: %q", resp.Response)
	}
	if len(resp.Citations) != 2 || resp.Citations[0] != "Doc1" || resp.Citations[1] != "Doc2" {
		t.Fatalf("unexpected citations: %v", resp.Citations)
	}
	if resp.ConversationID != "c1" {
		t.Fatalf("unexpected conversation id: %q", resp.ConversationID)
	}
}

func TestChatEndpoint_AutoCreatesConversation(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "u1", "ana")

	rec := postChat(t, env, token, map[string]any{"message": "hola, quiero una rutina"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ConversationID == "" {
		t.Fatalf("expected auto-created conversation id")
	}
}

func TestChatEndpoint_DegradedRetrievalStillResponds(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "u1", "ana")
	env.seedConversation(t, "c1", "u1", "rutinas")

	env.retriever.Err = llm.ErrRetrieval
	env.generator.Response = "General advice without sources."

	rec := postChat(t, env, token, map[string]any{
		"message":         "what about cardio?",
		"conversation_id": "c1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on degraded retrieval, got %d", rec.Code)
	}
	var resp struct {
		Response  string   `json:"response"`
		Citations []string `json:"citations"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Citations == nil || len(resp.Citations) != 0 {
		t.Fatalf("expected empty citations array, got %v", resp.Citations)
	}
	if resp.Response == "" {
		t.Fatalf("expected non-empty response")
	}
}

func TestChatEndpoint_RejectsMissingMessage(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "u1", "ana")

	rec := postChat(t, env, token, map[string]any{"conversation_id": "c1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChatEndpoint_UnknownConversation(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "u1", "ana")

	rec := postChat(t, env, token, map[string]any{
		"message":         "hola",
		"conversation_id": "missing",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestChatEndpoint_ForeignConversationHiddenAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	_ = env.seedUser(t, "owner", "dueña")
	env.seedConversation(t, "c1", "owner", "privada")
	token := env.seedUser(t, "intruder", "otro")

	rec := postChat(t, env, token, map[string]any{
		"message":         "hola",
		"conversation_id": "c1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign conversation, got %d", rec.Code)
	}
}

func TestChatEndpoint_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := postChat(t, env, "", map[string]any{"message": "hola"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
