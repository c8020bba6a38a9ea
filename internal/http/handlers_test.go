package http

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gymchat/internal/domain"
	"gymchat/internal/llm"
	"gymchat/internal/service"
)

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

type mockConversationRepo struct {
	mu    sync.Mutex
	convs map[string]domain.Conversation
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{convs: make(map[string]domain.Conversation)}
}

func (m *mockConversationRepo) Create(_ context.Context, conv domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[conv.ID] = conv
	return nil
}

func (m *mockConversationRepo) GetByID(_ context.Context, id string) (domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		return domain.Conversation{}, pgx.ErrNoRows
	}
	return conv, nil
}

func (m *mockConversationRepo) ListByUserID(_ context.Context, userID string) ([]domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Conversation
	for _, conv := range m.convs {
		if conv.UserID == userID {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (m *mockConversationRepo) Rename(_ context.Context, id, title string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		return pgx.ErrNoRows
	}
	conv.Title = title
	conv.UpdatedAt = updatedAt
	m.convs[id] = conv
	return nil
}

func (m *mockConversationRepo) Touch(_ context.Context, id string, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if ok {
		conv.UpdatedAt = updatedAt
		m.convs[id] = conv
	}
	return nil
}

func (m *mockConversationRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, id)
	return nil
}

type mockMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
}

func (m *mockMessageRepo) Create(_ context.Context, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepo) ListByConversationID(_ context.Context, conversationID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// testEnv arma el router completo con servicios reales sobre repos en memoria.
type testEnv struct {
	router    *gin.Engine
	jwtSvc    *service.JWTService
	users     *mockUserRepo
	convs     *mockConversationRepo
	msgs      *mockMessageRepo
	retriever *llm.MockRetriever
	generator *llm.MockGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	users := newMockUserRepo()
	convs := newMockConversationRepo()
	msgs := &mockMessageRepo{}
	retriever := &llm.MockRetriever{}
	generator := &llm.MockGenerator{Response: "ok"}

	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	userSvc := service.NewUserService(logger, users, service.NewMemoryGuestSessionStore())
	chatSvc := service.NewChatService(logger, retriever, generator, convs, msgs, 3, 10)
	convSvc := service.NewConversationService(convs, msgs)

	router := NewRouter(
		logger,
		jwtSvc,
		NewUserHandler(logger, userSvc, jwtSvc),
		NewChatHandler(logger, chatSvc),
		NewConversationHandler(logger, convSvc),
	)

	return &testEnv{
		router:    router,
		jwtSvc:    jwtSvc,
		users:     users,
		convs:     convs,
		msgs:      msgs,
		retriever: retriever,
		generator: generator,
	}
}

// seedUser crea un usuario y devuelve un access token valido para el.
func (e *testEnv) seedUser(t *testing.T, id, username string) string {
	t.Helper()
	now := time.Now().UTC()
	user := domain.User{ID: id, Username: username, CreatedAt: now, UpdatedAt: now}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	pair, err := e.jwtSvc.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return pair.AccessToken
}

func (e *testEnv) seedConversation(t *testing.T, id, userID, title string) {
	t.Helper()
	now := time.Now().UTC()
	err := e.convs.Create(context.Background(), domain.Conversation{
		ID:        id,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
}
