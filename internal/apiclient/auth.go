package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/fueltrackr/internal/model"
)

// UserInfo — профиль из userinfo провайдера, как его пересылает API.
type UserInfo struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Role       string `json:"role"`
}

// SessionUser приводит userinfo к профилю сессии. Если email нет, используется sub.
func (u UserInfo) SessionUser() model.SessionUser {
	email := u.Email
	if email == "" {
		email = u.Sub
	}
	name := u.Name
	if name == "" {
		name = strings.TrimSpace(u.GivenName + " " + u.FamilyName)
	}
	return model.SessionUser{Email: email, Name: name, Role: model.Role(u.Role)}
}

type CallbackResponse struct {
	Status      string   `json:"status"`
	AccessToken string   `json:"access_token"`
	IDToken     string   `json:"id_token"`
	User        UserInfo `json:"user"`
}

// ExchangeCode обменивает authorization code на токены через API (секрет клиента хранит API).
func (c *Client) ExchangeCode(ctx context.Context, code string) (*CallbackResponse, error) {
	var out CallbackResponse
	if err := c.do(ctx, http.MethodGet, "/auth/callback?code="+url.QueryEscape(code), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
