// Package session — сессия браузера на стороне сервера: cookie с непрозрачным id,
// токен и профиль в storage.SessionStore.
//
// Менять сессию могут только обработчик callback и выход (Writer);
// остальные страницы получают Reader.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fueltrackr/internal/config"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/storage"
	"github.com/google/uuid"
)

var ErrNoSession = errors.New("session: not found")

type Reader interface {
	// Load возвращает ErrNoSession, если cookie нет, запись истекла или в ней нет токена.
	Load(r *http.Request) (*model.Session, error)
	Token(r *http.Request) (string, error)
	User(r *http.Request) (*model.SessionUser, error)
}

type Writer interface {
	Reader
	SetSession(w http.ResponseWriter, r *http.Request, token, idToken string, user model.SessionUser) (*model.Session, error)
	ClearSession(w http.ResponseWriter, r *http.Request) error
}

type Manager struct {
	store      storage.SessionStore
	cookieName string
	secure     bool
	ttl        time.Duration
	now        func() time.Time
}

func NewManager(store storage.SessionStore, cfg config.SessionConfig) *Manager {
	name := cfg.CookieName
	if name == "" {
		name = "fueltrackr_session"
	}
	return &Manager{store: store, cookieName: name, secure: cfg.Secure, ttl: cfg.TTL, now: time.Now}
}

func (m *Manager) sessionID(r *http.Request) string {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (m *Manager) Load(r *http.Request) (*model.Session, error) {
	sid := m.sessionID(r)
	if sid == "" {
		return nil, ErrNoSession
	}
	s, err := m.store.GetSession(r.Context(), sid)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil || s.Token == "" {
		return nil, ErrNoSession
	}
	return s, nil
}

func (m *Manager) Token(r *http.Request) (string, error) {
	s, err := m.Load(r)
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

func (m *Manager) User(r *http.Request) (*model.SessionUser, error) {
	s, err := m.Load(r)
	if err != nil {
		return nil, err
	}
	return &s.User, nil
}

// SetSession создаёт новую сессию под свежим id (старая, если была, удаляется) и ставит cookie.
func (m *Manager) SetSession(w http.ResponseWriter, r *http.Request, token, idToken string, user model.SessionUser) (*model.Session, error) {
	if token == "" {
		return nil, errors.New("set session: empty token")
	}
	if old := m.sessionID(r); old != "" {
		if err := m.store.DeleteSession(r.Context(), old); err != nil {
			return nil, fmt.Errorf("set session: drop previous: %w", err)
		}
	}
	s := &model.Session{
		ID:        uuid.NewString(),
		Token:     token,
		IDToken:   idToken,
		User:      user,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.SaveSession(r.Context(), s); err != nil {
		return nil, fmt.Errorf("set session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// ClearSession удаляет запись и cookie. Без cookie — no-op.
func (m *Manager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	sid := m.sessionID(r)
	if sid == "" {
		return nil
	}
	if err := m.store.DeleteSession(r.Context(), sid); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
