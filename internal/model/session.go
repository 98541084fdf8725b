package model

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Valid — только роли, которые понимает API.
func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// SessionUser — профиль, сохранённый при входе (то, что показывает шапка страницы).
type SessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Session — авторизованная сессия браузера. Браузер знает только ID (cookie).
type Session struct {
	ID        string      `json:"id"`
	Token     string      `json:"token"`
	IDToken   string      `json:"id_token,omitempty"`
	User      SessionUser `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}
