package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/view"
	"github.com/gorilla/sessions"
)

const (
	flashCookie = "fueltrackr_flash"
	flashMaxAge = 300
	stateCookie = "fueltrackr_state"
	stateMaxAge = 600
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("writeJSON encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Pages — общее для HTML-обработчиков: шаблоны и подписанные служебные cookie
// (одноразовые уведомления и state входа). Запись сессии здесь не меняется.
type Pages struct {
	view    *view.Renderer
	cookies *sessions.CookieStore
	secure  bool
}

func NewPages(v *view.Renderer, secret string, secure bool) *Pages {
	return &Pages{view: v, cookies: sessions.NewCookieStore([]byte(secret)), secure: secure}
}

func (p *Pages) cookieOptions(path string, maxAge int) *sessions.Options {
	return &sessions.Options{Path: path, MaxAge: maxAge, HttpOnly: true, Secure: p.secure, SameSite: http.SameSiteLaxMode}
}

// setFlash кладёт уведомление в cookie; его покажет следующая отрисованная страница.
func (p *Pages) setFlash(w http.ResponseWriter, r *http.Request, kind view.FlashKind, msg string) {
	data, err := json.Marshal(view.Flash{Kind: kind, Message: msg})
	if err != nil {
		return
	}
	sess, _ := p.cookies.Get(r, flashCookie)
	sess.Options = p.cookieOptions("/", flashMaxAge)
	sess.AddFlash(string(data))
	if err := sess.Save(r, w); err != nil {
		logger.Errorf("flash: %v", err)
	}
}

// popFlash читает уведомление и сразу удаляет cookie.
func (p *Pages) popFlash(w http.ResponseWriter, r *http.Request) *view.Flash {
	sess, err := p.cookies.Get(r, flashCookie)
	if err != nil || sess.IsNew {
		return nil
	}
	flashes := sess.Flashes()
	sess.Options = p.cookieOptions("/", -1)
	if err := sess.Save(r, w); err != nil {
		logger.Errorf("flash: %v", err)
	}
	if len(flashes) == 0 {
		return nil
	}
	raw, _ := flashes[len(flashes)-1].(string)
	var f view.Flash
	if err := json.Unmarshal([]byte(raw), &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// setState запоминает state входа до возврата от провайдера.
func (p *Pages) setState(w http.ResponseWriter, r *http.Request, state string) error {
	sess, _ := p.cookies.Get(r, stateCookie)
	sess.Options = p.cookieOptions("/callback", stateMaxAge)
	sess.Values["state"] = state
	return sess.Save(r, w)
}

// popState возвращает сохранённый state и удаляет cookie. ok=false — cookie нет или подпись не сошлась.
func (p *Pages) popState(w http.ResponseWriter, r *http.Request) (string, bool) {
	sess, err := p.cookies.Get(r, stateCookie)
	if err != nil || sess.IsNew {
		return "", false
	}
	state, _ := sess.Values["state"].(string)
	sess.Options = p.cookieOptions("/callback", -1)
	if err := sess.Save(r, w); err != nil {
		logger.Errorf("state: %v", err)
	}
	return state, true
}

func (p *Pages) redirect(w http.ResponseWriter, r *http.Request, to string, kind view.FlashKind, msg string) {
	p.setFlash(w, r, kind, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// render дополняет страницу пользователем из сессии и отложенным уведомлением.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, page view.Page) {
	if page.User == nil {
		if s := middleware.CurrentSession(r.Context()); s != nil {
			u := middleware.CurrentUser(r.Context())
			page.User = &u
		}
	}
	if page.Flash == nil {
		page.Flash = p.popFlash(w, r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := p.view.Render(w, name, page); err != nil {
		logger.Errorf("render %s: %v", name, err)
	}
}

func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	p.render(w, r, status, "error", view.Page{
		Title: http.StatusText(status),
		Data:  errorPage{Status: status, Message: msg},
	})
}

type errorPage struct {
	Status  int
	Message string
}

// sessionExpired — API отклонил токен: отправляем на вход, где новый вход заменит сессию.
func (p *Pages) sessionExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	p.redirect(w, r, middleware.LoginPath, view.FlashError, "Your session has expired. Please sign in again.")
	return true
}

// statusFor — статус страницы при ошибке API: 4xx API как есть, остальное 502.
func statusFor(err error) int {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
