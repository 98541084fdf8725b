package handler

import (
	"errors"
	"net/http"

	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/oidc"
	"github.com/fueltrackr/internal/service"
	"github.com/fueltrackr/internal/session"
	"github.com/fueltrackr/internal/view"
)

// AuthHandler — вход через провайдера, callback и выход.
// Единственный обработчик, которому выдан session.Writer.
type AuthHandler struct {
	callback *service.CallbackService
	sessions session.Writer
	provider *oidc.Provider
	pages    *Pages
}

func NewAuthHandler(callback *service.CallbackService, sessions session.Writer, provider *oidc.Provider, pages *Pages) *AuthHandler {
	return &AuthHandler{callback: callback, sessions: sessions, provider: provider, pages: pages}
}

// LoginPage — публичная стартовая страница. Сессия здесь не проверяется,
// поэтому после истечения токена нет петли редиректов.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, "login", view.Page{Title: "Sign in"})
}

// Login запоминает state в cookie и отправляет браузер к провайдеру.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := oidc.NewState()
	if err := h.pages.setState(w, r, state); err != nil {
		logger.Errorf("login: %v", err)
		h.pages.renderError(w, r, http.StatusInternalServerError, "Could not start sign in.")
		return
	}
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// checkState сверяет state из callback с cookie. Без cookie callback принимается
// только при разрешённом входе у провайдера; испорченная подпись — несовпадение.
func (h *AuthHandler) checkState(w http.ResponseWriter, r *http.Request) error {
	if _, err := r.Cookie(stateCookie); err != nil {
		if h.provider.RequireState() {
			return service.ErrStateMismatch
		}
		return nil
	}
	state, ok := h.pages.popState(w, r)
	if !ok || state != r.URL.Query().Get("state") {
		return service.ErrStateMismatch
	}
	return nil
}

// Callback — возврат от провайдера с ?code=. Обмен кода идёт через CallbackService
// (один обмен на код); при успехе создаётся сессия и открывается /dashboard.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		logger.Infof("callback: provider error %s: %s", e, q.Get("error_description"))
		h.pages.redirect(w, r, middleware.LoginPath, view.FlashError, "Sign in was cancelled or failed. Please try again.")
		return
	}
	if err := h.checkState(w, r); err != nil {
		// повтор callback (обновление страницы): state cookie уже израсходован,
		// но сессия есть, код повторно не обмениваем
		if _, serr := h.sessions.Load(r); serr == nil {
			http.Redirect(w, r, middleware.LandingPath, http.StatusSeeOther)
			return
		}
		logger.Infof("callback: %v", err)
		h.pages.redirect(w, r, middleware.LoginPath, view.FlashError, "Login failed. Please try again.")
		return
	}

	res := h.callback.Exchange(r.Context(), q.Get("code"))
	if res.State != service.CallbackSuccess {
		// повтор уже обменянного кода (обновление страницы, двойной запрос):
		// если сессия есть, просто продолжаем в ней
		if errors.Is(res.Err, service.ErrCodeReplayed) {
			if _, err := h.sessions.Load(r); err == nil {
				http.Redirect(w, r, middleware.LandingPath, http.StatusSeeOther)
				return
			}
		}
		if !errors.Is(res.Err, service.ErrCodeReplayed) && !errors.Is(res.Err, service.ErrMissingCode) {
			logger.Errorf("callback: %v", res.Err)
		}
		h.pages.redirect(w, r, middleware.LoginPath, view.FlashError, "Login failed. Please try again.")
		return
	}

	s, err := h.sessions.SetSession(w, r, res.Token, res.IDToken, res.User)
	if err != nil {
		logger.Errorf("callback: %v", err)
		h.pages.redirect(w, r, middleware.LoginPath, view.FlashError, "Login failed. Please try again.")
		return
	}
	logger.Infof("login %s role=%s session=%s", res.User.Email, res.User.Role, logger.MaskSecret(s.ID))
	h.pages.setFlash(w, r, view.FlashSuccess, "Login successful")
	http.Redirect(w, r, middleware.LandingPath, http.StatusSeeOther)
}

// Logout удаляет сессию и, если провайдер поддерживает end-session, завершает сессию и там.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var idToken string
	if s, err := h.sessions.Load(r); err == nil {
		idToken = s.IDToken
	}
	if err := h.sessions.ClearSession(w, r); err != nil {
		logger.Errorf("logout: %v", err)
	}
	to := middleware.LoginPath
	if u := h.provider.EndSessionURL(idToken); u != "" {
		to = u
	}
	h.pages.redirect(w, r, to, view.FlashInfo, "You have been signed out.")
}

// SessionInfo — JSON для скриптов: кто вошёл и что в токене (без самого токена).
func SessionInfo(w http.ResponseWriter, r *http.Request) {
	s := middleware.CurrentSession(r.Context())
	if s == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	resp := sessionInfo{User: middleware.CurrentUser(r.Context()), CreatedAt: s.CreatedAt.Unix()}
	if c := middleware.CurrentClaims(r.Context()); c != nil && c.ExpiresAt != nil {
		resp.ExpiresAt = c.ExpiresAt.Unix()
	}
	writeJSON(w, http.StatusOK, resp)
}

type sessionInfo struct {
	User      model.SessionUser `json:"user"`
	CreatedAt int64             `json:"created_at"`
	ExpiresAt int64             `json:"expires_at,omitempty"`
}
