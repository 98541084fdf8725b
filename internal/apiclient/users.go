package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fueltrackr/internal/model"
)

type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FuelCardNo string `json:"fuel_card_no"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/users/register", req, nil)
}

func (c *Client) Me(ctx context.Context) (*model.UserAccount, error) {
	var u model.UserAccount
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateMe(ctx context.Context, upd model.ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, "/users/me", upd, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]model.UserAccount, error) {
	var out []model.UserAccount
	if err := c.do(ctx, http.MethodGet, "/users/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateUser(ctx context.Context, email string, upd model.AdminUserUpdate) error {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(email), upd, nil)
}

func (c *Client) DeleteUser(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(email), nil, nil)
}

// ForgotPassword просит API отправить письмо со ссылкой сброса; возвращает текст ответа API.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/users/forgot-password", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.Text(), nil
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	var out MessageResponse
	body := map[string]string{"token": token, "new_password": newPassword}
	if err := c.do(ctx, http.MethodPost, "/users/reset-password", body, &out); err != nil {
		return "", err
	}
	return out.Text(), nil
}
