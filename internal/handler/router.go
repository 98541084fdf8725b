package handler

import (
	"net/http"
	"strings"

	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/model"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes — обработчики, из которых собирается веб-фронт.
type Routes struct {
	Auth    *AuthHandler
	Account *AccountHandler
	Travel  *TravelHandler
	Profile *ProfileHandler
	Admin   *AdminHandler
	Guard   *middleware.Guard

	CORSAllowedOrigins string
	// AuthRateLimit — запросов в минуту с одного IP на вход, callback и публичные формы.
	AuthRateLimit int
	// TrustProxy — брать адрес клиента из заголовков прокси (chi RealIP).
	TrustProxy bool
}

func (rt Routes) Handler() http.Handler {
	r := chi.NewRouter()
	if rt.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recover)
	r.Use(middleware.RequestLog)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); w.Write([]byte("ok")) })

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rt.AuthRateLimit))
		r.Get("/", rt.Auth.LoginPage)
		r.Get("/login", rt.Auth.Login)
		r.Get("/callback", rt.Auth.Callback)
		r.Get("/register", rt.Account.RegisterPage)
		r.Post("/register", rt.Account.Register)
		r.Get("/forgot-password", rt.Account.ForgotPage)
		r.Post("/forgot-password", rt.Account.Forgot)
		r.Get("/reset-password", rt.Account.ResetPage)
		r.Post("/reset-password", rt.Account.Reset)
	})
	r.Post("/logout", rt.Auth.Logout)

	r.Group(func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(rt.Guard.Require(""))
		r.Get("/dashboard", rt.Travel.Dashboard)
		r.Post("/travels", rt.Travel.Create)
		r.Get("/profile", rt.Profile.Show)
		r.Post("/profile", rt.Profile.Update)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(rt.Guard.Require(model.RoleAdmin))
		r.With(chimw.Compress(5)).Get("/", rt.Admin.Dashboard)
		r.Post("/users/{email}/role", rt.Admin.SetRole)
		r.Post("/users/{email}/delete", rt.Admin.Delete)
		r.Get("/export/users", rt.Admin.ExportUsers)
		r.Get("/export/logs", rt.Admin.ExportLogs)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   splitOrigins(rt.CORSAllowedOrigins),
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(rt.Guard.RequireJSON)
		r.Get("/session", SessionInfo)
	})
	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
