package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/session"
)

const (
	LoginPath   = "/"
	LandingPath = "/dashboard"
)

// Guard пропускает к защищённым страницам только запросы с сессией.
// Токен разбирается без проверки подписи: результат выбирает страницу,
// права на данные проверяет API.
type Guard struct {
	sessions session.Reader
	now      func() time.Time
}

func NewGuard(sessions session.Reader) *Guard {
	return &Guard{sessions: sessions, now: time.Now}
}

// check возвращает сессию и claims либо путь, куда отправить пользователя.
func (g *Guard) check(r *http.Request, role model.Role) (*model.Session, *session.Claims, string) {
	s, err := g.sessions.Load(r)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			logger.Errorf("guard %s: %v", r.URL.Path, err)
		}
		return nil, nil, LoginPath
	}
	claims, err := session.DecodeClaims(s.Token)
	if err != nil {
		logger.Debugf("guard %s: session=%s: %v", r.URL.Path, logger.MaskSecret(s.ID), err)
		return nil, nil, LoginPath
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(g.now()) {
		logger.Debugf("guard %s: session=%s: token expired", r.URL.Path, logger.MaskSecret(s.ID))
		return nil, nil, LoginPath
	}
	if role != "" && model.Role(claims.Role) != role {
		return nil, nil, LandingPath
	}
	return s, claims, ""
}

func (g *Guard) serve(next http.Handler, w http.ResponseWriter, r *http.Request, s *model.Session, c *session.Claims) {
	ctx := WithSession(r.Context(), s, c)
	ctx = apiclient.WithToken(ctx, s.Token)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// Require — middleware для страниц. role == "" — любой вошедший пользователь.
// Нет сессии, токен не разбирается или истёк — 303 на страницу входа;
// роль не совпадает — 303 на /dashboard.
func (g *Guard) Require(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, c, redirect := g.check(r, role)
			if redirect != "" {
				http.Redirect(w, r, redirect, http.StatusSeeOther)
				return
			}
			g.serve(next, w, r, s, c)
		})
	}
}

// RequireJSON — то же для /api/*: вместо редиректа 401 в JSON.
func (g *Guard) RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, c, redirect := g.check(r, "")
		if redirect != "" {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"})
			return
		}
		g.serve(next, w, r, s, c)
	})
}
