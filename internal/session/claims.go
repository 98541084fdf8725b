package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("session: token cannot be decoded")

// Claims — поля access token, которые нужны для навигации.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// DecodeClaims разбирает JWT без проверки подписи. Результат годится только
// для выбора страницы; права проверяет API на каждом запросе.
func DecodeClaims(token string) (*Claims, error) {
	c := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return c, nil
}
