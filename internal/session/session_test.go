package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fueltrackr/internal/config"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/storage/memory"
	"github.com/golang-jwt/jwt/v5"
)

func newManager() *Manager {
	return NewManager(memory.New(time.Hour, time.Minute), config.SessionConfig{CookieName: "sid", TTL: time.Hour})
}

// withCookies переносит Set-Cookie ответа в новый запрос, как это сделал бы браузер.
func withCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestSetSessionThenRead(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	user := model.SessionUser{Email: "ann@haycarb.com", Name: "Ann", Role: model.RoleEmployee}
	s, err := m.SetSession(rec, httptest.NewRequest(http.MethodGet, "/callback", nil), "tok-1", "id-1", user)
	if err != nil {
		t.Fatalf("set session: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != s.ID || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies %+v", cookies)
	}

	req := withCookies(rec)
	tok, err := m.Token(req)
	if err != nil || tok != "tok-1" {
		t.Fatalf("token: %q %v", tok, err)
	}
	u, err := m.User(req)
	if err != nil || u.Email != "ann@haycarb.com" {
		t.Fatalf("user: %+v %v", u, err)
	}
}

func TestClearSessionRemovesToken(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	_, err := m.SetSession(rec, httptest.NewRequest(http.MethodGet, "/callback", nil), "tok", "", model.SessionUser{})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	req := withCookies(rec)

	out := httptest.NewRecorder()
	if err := m.ClearSession(out, req); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if c := out.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("cookie must be expired, got %+v", c)
	}
	// старый cookie, если браузер его ещё пришлёт, больше ничего не открывает
	if _, err := m.Token(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSetSessionRotatesID(t *testing.T) {
	m := newManager()
	first := httptest.NewRecorder()
	s1, _ := m.SetSession(first, httptest.NewRequest(http.MethodGet, "/", nil), "tok-1", "", model.SessionUser{})
	req := withCookies(first)

	second := httptest.NewRecorder()
	s2, err := m.SetSession(second, req, "tok-2", "", model.SessionUser{})
	if err != nil {
		t.Fatalf("second set: %v", err)
	}
	if s1.ID == s2.ID {
		t.Fatal("session id must change on login")
	}
	if _, err := m.Load(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("previous session must be dropped, got %v", err)
	}
}

func TestLoadWithoutCookie(t *testing.T) {
	m := newManager()
	if _, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestSetSessionRequiresToken(t *testing.T) {
	m := newManager()
	if _, err := m.SetSession(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "", "", model.SessionUser{}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDecodeClaims(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ann@haycarb.com", "role": "admin",
	}).SignedString([]byte("any-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := DecodeClaims(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Role != "admin" || c.Subject != "ann@haycarb.com" {
		t.Fatalf("unexpected claims %+v", c)
	}
}

func TestDecodeClaimsMalformed(t *testing.T) {
	for _, tok := range []string{"", "opaque-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"} {
		if _, err := DecodeClaims(tok); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("%q: expected ErrMalformedToken, got %v", tok, err)
		}
	}
}
