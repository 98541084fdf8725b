package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/service"
	"github.com/fueltrackr/internal/view"
)

// AccountHandler — публичные формы: регистрация и сброс пароля.
type AccountHandler struct {
	registration *service.RegistrationService
	api          PasswordAPI
	pages        *Pages
}

func NewAccountHandler(registration *service.RegistrationService, api PasswordAPI, pages *Pages) *AccountHandler {
	return &AccountHandler{registration: registration, api: api, pages: pages}
}

type registerPage struct {
	Form   apiclient.RegisterRequest
	Domain string
}

func (h *AccountHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, "register", view.Page{
		Title: "Register",
		Data:  registerPage{Domain: h.registration.Domain()},
	})
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.renderError(w, r, http.StatusBadRequest, "Invalid form")
		return
	}
	req := apiclient.RegisterRequest{
		Name:       r.PostForm.Get("name"),
		Email:      r.PostForm.Get("email"),
		Password:   r.PostForm.Get("password"),
		FuelCardNo: r.PostForm.Get("fuel_card_no"),
	}
	err := h.registration.Register(r.Context(), req)
	if err == nil {
		logger.Infof("registered %s", strings.ToLower(strings.TrimSpace(req.Email)))
		h.pages.redirect(w, r, middleware.LoginPath, view.FlashSuccess, "Registration successful. Please sign in.")
		return
	}

	status := http.StatusBadRequest
	var msg string
	switch {
	case errors.Is(err, service.ErrMissingFields):
		msg = "Please fill in all fields."
	case errors.Is(err, service.ErrInvalidEmail):
		msg = "Please enter a valid email address."
	case errors.Is(err, service.ErrEmailDomain):
		msg = "Only @" + h.registration.Domain() + " email addresses can register."
	default:
		status = statusFor(err)
		msg = apiclient.Message(err, "Registration failed. Please try again.")
		logger.Infof("register %s: %v", req.Email, err)
	}
	req.Password = ""
	h.pages.render(w, r, status, "register", view.Page{
		Title: "Register",
		Flash: &view.Flash{Kind: view.FlashError, Message: msg},
		Data:  registerPage{Form: req, Domain: h.registration.Domain()},
	})
}

type forgotPage struct {
	Email string
}

func (h *AccountHandler) ForgotPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, "forgot", view.Page{Title: "Forgot password", Data: forgotPage{}})
}

func (h *AccountHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		h.pages.render(w, r, http.StatusBadRequest, "forgot", view.Page{
			Title: "Forgot password",
			Flash: &view.Flash{Kind: view.FlashError, Message: "Please enter your email."},
			Data:  forgotPage{},
		})
		return
	}
	msg, err := h.api.ForgotPassword(r.Context(), email)
	if err != nil {
		logger.Infof("forgot-password %s: %v", email, err)
		h.pages.render(w, r, statusFor(err), "forgot", view.Page{
			Title: "Forgot password",
			Flash: &view.Flash{Kind: view.FlashError, Message: apiclient.Message(err, "Could not send reset link. Please try again.")},
			Data:  forgotPage{Email: email},
		})
		return
	}
	if msg == "" {
		msg = "If the email is registered, a reset link has been sent."
	}
	h.pages.render(w, r, http.StatusOK, "forgot", view.Page{
		Title: "Forgot password",
		Flash: &view.Flash{Kind: view.FlashSuccess, Message: msg},
		Data:  forgotPage{},
	})
}

type resetPage struct {
	Token string
	Done  bool
}

func (h *AccountHandler) ResetPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, "reset", view.Page{
		Title: "Reset password",
		Data:  resetPage{Token: r.URL.Query().Get("token")},
	})
}

func (h *AccountHandler) Reset(w http.ResponseWriter, r *http.Request) {
	token := r.FormValue("token")
	password := r.FormValue("new_password")
	fail := func(status int, msg string) {
		h.pages.render(w, r, status, "reset", view.Page{
			Title: "Reset password",
			Flash: &view.Flash{Kind: view.FlashError, Message: msg},
			Data:  resetPage{Token: token},
		})
	}
	switch {
	case token == "":
		fail(http.StatusBadRequest, "Reset link is invalid.")
		return
	case password == "":
		fail(http.StatusBadRequest, "Please enter a new password.")
		return
	case password != r.FormValue("confirm_password"):
		fail(http.StatusBadRequest, "Passwords do not match.")
		return
	}
	msg, err := h.api.ResetPassword(r.Context(), token, password)
	if err != nil {
		logger.Infof("reset-password: %v", err)
		fail(statusFor(err), apiclient.Message(err, "Password reset failed. The link may have expired."))
		return
	}
	if msg == "" {
		msg = "Password reset successful."
	}
	h.pages.render(w, r, http.StatusOK, "reset", view.Page{
		Title: "Reset password",
		Flash: &view.Flash{Kind: view.FlashSuccess, Message: msg},
		Data:  resetPage{Done: true},
	})
}
