package storage

import (
	"context"

	"github.com/fueltrackr/internal/model"
)

// SessionStore — серверное хранилище сессий браузера и отметок об использованных
// authorization code. Реализации: redis.Client, memory.Client (для -dev и тестов).
type SessionStore interface {
	SaveSession(ctx context.Context, s *model.Session) error
	// GetSession возвращает nil, nil, если сессии нет или она истекла.
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	// ClaimCode атомарно помечает код использованным. false — код уже был заявлен.
	ClaimCode(ctx context.Context, code string) (bool, error)
	Close() error
}
