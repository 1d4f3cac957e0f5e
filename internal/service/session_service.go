package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"codearena/internal/domain"
	"codearena/internal/repository"
)

// Vida de una sesion y ventana dentro de la cual una validacion la renueva.
const (
	sessionTTL           = 30 * 24 * time.Hour
	sessionRefreshWindow = 15 * 24 * time.Hour
	sessionTokenBytes    = 20 // 160 bits de entropia
)

var ErrSessionInvalid = errors.New("session invalid")

// Alfabeto base32 en minusculas, sin padding: apto para valor de cookie.
var sessionTokenEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// SessionService emite y valida sesiones con token opaco. Solo el hash
// SHA-256 del token se persiste como id de la fila; el token crudo vive
// unicamente en la cookie del cliente.
type SessionService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
}

func NewSessionService(sessions repository.SessionRepository, users repository.UserRepository) *SessionService {
	return &SessionService{sessions: sessions, users: users}
}

// GenerateToken produce un token aleatorio criptografico listo para cookie.
func GenerateToken() (string, error) {
	raw := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return sessionTokenEncoding.EncodeToString(raw), nil
}

// HashToken deriva el id de sesion de forma deterministica y one-way.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// CreateSession persiste la sesion para el token dado con vencimiento a 30
// dias. El token crudo queda en manos del caller para setear la cookie.
func (s *SessionService) CreateSession(ctx context.Context, token, userID string) (domain.Session, error) {
	now := time.Now().UTC()
	session := domain.Session{
		ID:        HashToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// ValidateToken busca la sesion por el hash del token. Una sesion vencida se
// elimina y reporta invalida; una sesion con menos de 15 dias de vida se
// renueva a 30 dias desde ahora antes de devolverla (ventana deslizante).
func (s *SessionService) ValidateToken(ctx context.Context, token string) (domain.Session, domain.User, error) {
	if token == "" {
		return domain.Session{}, domain.User{}, ErrSessionInvalid
	}

	session, err := s.sessions.GetByID(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, domain.User{}, ErrSessionInvalid
		}
		return domain.Session{}, domain.User{}, err
	}

	now := time.Now().UTC()
	if !now.Before(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return domain.Session{}, domain.User{}, err
		}
		return domain.Session{}, domain.User{}, ErrSessionInvalid
	}

	// Dos validaciones concurrentes pueden renovar ambas; es benigno porque
	// calculan el mismo vencimiento salvo el sesgo de timing entre requests.
	if !now.Before(session.ExpiresAt.Add(-sessionRefreshWindow)) {
		session.ExpiresAt = now.Add(sessionTTL)
		if err := s.sessions.UpdateExpiresAt(ctx, session.ID, session.ExpiresAt); err != nil {
			return domain.Session{}, domain.User{}, err
		}
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Session{}, domain.User{}, ErrSessionInvalid
		}
		return domain.Session{}, domain.User{}, err
	}
	return session, user, nil
}

// Invalidate elimina la sesion de forma incondicional (logout explicito).
func (s *SessionService) Invalidate(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// InvalidateAllForUser cierra todas las sesiones del usuario.
func (s *SessionService) InvalidateAllForUser(ctx context.Context, userID string) error {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// PurgeExpired borra sesiones vencidas; se invoca al arrancar el servicio.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now().UTC())
}
