// Package oidc — ссылки на провайдера идентификации: вход (authorization code flow) и выход.
// Обмен кода на токены выполняет API, у веб-фронта секрет клиента не используется.
package oidc

import (
	"net/url"

	"github.com/fueltrackr/internal/config"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type Provider struct {
	oauth                 oauth2.Config
	endSessionURL         string
	postLogoutRedirectURL string
	allowIdPInitiated     bool
}

func NewProvider(cfg config.OIDCConfig) *Provider {
	return &Provider{
		oauth: oauth2.Config{
			ClientID: cfg.ClientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
		endSessionURL:         cfg.EndSessionURL,
		postLogoutRedirectURL: cfg.PostLogoutRedirectURL,
		allowIdPInitiated:     cfg.AllowIdPInitiated,
	}
}

// RequireState — callback без state cookie отклоняется, если вход у провайдера не разрешён явно.
func (p *Provider) RequireState() bool {
	return !p.allowIdPInitiated
}

// NewState — случайное значение state для защиты callback от CSRF.
func NewState() string {
	return uuid.NewString()
}

// AuthCodeURL — страница входа провайдера (response_type=code).
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// EndSessionURL — RP-initiated logout. Пустая строка, если провайдер не настроен на выход.
func (p *Provider) EndSessionURL(idToken string) string {
	if p.endSessionURL == "" {
		return ""
	}
	u, err := url.Parse(p.endSessionURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	if idToken != "" {
		q.Set("id_token_hint", idToken)
	}
	if p.postLogoutRedirectURL != "" {
		q.Set("post_logout_redirect_uri", p.postLogoutRedirectURL)
	}
	q.Set("client_id", p.oauth.ClientID)
	u.RawQuery = q.Encode()
	return u.String()
}
