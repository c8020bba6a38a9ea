package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gymchat/internal/domain"
	"gymchat/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username taken")
)

const (
	minPasswordLength = 8
	guestSessionTTL   = 7 * 24 * time.Hour
)

// UserService coordina registro, login y sesiones de invitado.
type UserService struct {
	logger        *zap.Logger
	users         repository.UserRepository
	guestSessions GuestSessionStore
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, guestSessions GuestSessionStore) *UserService {
	if guestSessions == nil {
		guestSessions = NewMemoryGuestSessionStore()
	}
	return &UserService{
		logger:        logger,
		users:         users,
		guestSessions: guestSessions,
	}
}

// Register crea un usuario con password bcrypt.
func (s *UserService) Register(ctx context.Context, username, email, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)

	if username == "" {
		return domain.User{}, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrInvalidPassword
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashBytes),
		IsGuest:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate valida username y password contra el hash almacenado.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID resuelve el usuario de un token ya validado.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	return user, nil
}

// CreateGuest crea un usuario invitado persistente con un codigo corto que
// permite retomar la sesion desde otro dispositivo.
func (s *UserService) CreateGuest(ctx context.Context) (domain.User, string, error) {
	code, err := newGuestCode()
	if err != nil {
		return domain.User{}, "", err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:        uuid.NewString(),
		Username:  "Guest_" + code,
		IsGuest:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, "", err
	}
	if err := s.guestSessions.Store(code, user.ID, guestSessionTTL); err != nil {
		return domain.User{}, "", fmt.Errorf("store guest session: %w", err)
	}
	return user, code, nil
}

// ResumeGuest re-adjunta una sesion invitada existente a partir de su codigo.
func (s *UserService) ResumeGuest(ctx context.Context, code string) (domain.User, error) {
	userID, err := s.guestSessions.Lookup(code)
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrGuestSessionNotFound
		}
		return domain.User{}, err
	}
	if !user.IsGuest {
		return domain.User{}, ErrGuestSessionNotFound
	}
	return user, nil
}

// newGuestCode genera un codigo estilo "A1B2C3".
func newGuestCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
