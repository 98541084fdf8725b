package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fueltrackr/internal/model"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), "redis://"+mr.Addr(), time.Hour, 10*time.Minute)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	s := &model.Session{ID: "sid-1", Token: "tok", User: model.SessionUser{Email: "a@haycarb.com", Name: "Ann", Role: model.RoleEmployee}}
	if err := c.SaveSession(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("session:sid-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
	got, err := c.GetSession(ctx, "sid-1")
	if err != nil || got == nil || got.User.Name != "Ann" || got.Token != "tok" {
		t.Fatalf("unexpected %+v err=%v", got, err)
	}
	if err := c.DeleteSession(ctx, "sid-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = c.GetSession(ctx, "sid-1")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil after delete, got %+v %v", got, err)
	}
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	_ = c.SaveSession(ctx, &model.Session{ID: "sid", Token: "tok"})
	mr.FastForward(2 * time.Hour)
	if got, _ := c.GetSession(ctx, "sid"); got != nil {
		t.Fatalf("expected expiry, got %+v", got)
	}
}

func TestClaimCode(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestClient(t)
	ok, err := c.ClaimCode(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = c.ClaimCode(ctx, "abc")
	if err != nil || ok {
		t.Fatalf("replay must be refused: ok=%v err=%v", ok, err)
	}
	for _, k := range mr.Keys() {
		if k == "code_used:abc" {
			t.Fatal("raw code must not be stored")
		}
	}
	mr.FastForward(11 * time.Minute)
	if ok, _ := c.ClaimCode(ctx, "abc"); !ok {
		t.Fatal("claim must be released after ttl")
	}
}
