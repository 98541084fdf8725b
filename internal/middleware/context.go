package middleware

import (
	"context"

	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/session"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	claimsKey  contextKey = "claims"
)

// CurrentSession возвращает сессию, которую положил Guard. nil вне защищённых маршрутов.
func CurrentSession(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionKey).(*model.Session)
	return s
}

func CurrentClaims(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(claimsKey).(*session.Claims)
	return c
}

// CurrentUser — профиль из сессии. Роль берётся только из токена, как в Guard:
// без claim роли пользователь не админ, что бы ни было в профиле.
func CurrentUser(ctx context.Context) model.SessionUser {
	var u model.SessionUser
	if s := CurrentSession(ctx); s != nil {
		u = s.User
	}
	if c := CurrentClaims(ctx); c != nil {
		u.Role = model.Role(c.Role)
	}
	return u
}

// WithSession — то же, что делает Guard; нужно обработчикам вне Guard и тестам.
func WithSession(ctx context.Context, s *model.Session, c *session.Claims) context.Context {
	ctx = context.WithValue(ctx, sessionKey, s)
	return context.WithValue(ctx, claimsKey, c)
}
