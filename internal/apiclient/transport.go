package apiclient

import (
	"context"
	"net/http"
)

type tokenKey struct{}

// WithToken кладёт токен сессии в контекст. Все запросы клиента с этим контекстом
// уходят с Authorization: Bearer.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}

// bearerTransport добавляет токен к каждому исходящему запросу. Без токена запрос не меняется.
type bearerTransport struct {
	next http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := TokenFrom(req.Context())
	if token == "" {
		return t.next.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.next.RoundTrip(clone)
}
