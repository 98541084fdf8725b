package memory

import (
	"context"
	"sync"
	"time"

	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/storage"
)

type item struct {
	session model.Session
	exp     time.Time
}

// Client — хранилище в памяти процесса. Сессии теряются при перезапуске.
type Client struct {
	mu         sync.Mutex
	sessionTTL time.Duration
	codeTTL    time.Duration
	sessions   map[string]item
	codes      map[string]time.Time
	now        func() time.Time
}

func New(sessionTTL, codeTTL time.Duration) *Client {
	return &Client{
		sessionTTL: sessionTTL,
		codeTTL:    codeTTL,
		sessions:   make(map[string]item),
		codes:      make(map[string]time.Time),
		now:        time.Now,
	}
}

func (c *Client) Close() error { return nil }

func (c *Client) SaveSession(ctx context.Context, s *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// брошенные сессии никто не читает, поэтому чистим их при записи
	for id, v := range c.sessions {
		if now.After(v.exp) {
			delete(c.sessions, id)
		}
	}
	c.sessions[s.ID] = item{session: *s, exp: now.Add(c.sessionTTL)}
	return nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*model.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.sessions[id]
	if !ok {
		return nil, nil
	}
	if c.now().After(v.exp) {
		delete(c.sessions, id)
		return nil, nil
	}
	s := v.session
	return &s, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

func (c *Client) ClaimCode(ctx context.Context, code string) (bool, error) {
	key := storage.CodeKey(code)
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if exp, ok := c.codes[key]; ok && now.Before(exp) {
		return false, nil
	}
	// заодно чистим просроченные отметки, иначе map растёт без ограничений
	for k, exp := range c.codes {
		if !now.Before(exp) {
			delete(c.codes, k)
		}
	}
	c.codes[key] = now.Add(c.codeTTL)
	return true, nil
}
