package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/export"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/travel"
	"github.com/fueltrackr/internal/view"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const adminPath = "/admin"

// AdminHandler — панель администратора: пользователи, журналы всех сотрудников, выгрузки.
// Доступ ограничивает Guard.Require(model.RoleAdmin), права на данные проверяет API.
type AdminHandler struct {
	api   AdminAPI
	pages *Pages
	now   func() time.Time
}

func NewAdminHandler(api AdminAPI, pages *Pages) *AdminHandler {
	return &AdminHandler{api: api, pages: pages, now: time.Now}
}

type adminPage struct {
	Query     string
	Selected  string
	Users     []model.UserAccount
	Filtered  []model.UserAccount
	Admins    int
	Employees int
	Groups    []travel.UserLogs
	Distances []travel.UserDistance
	Summary   travel.Summary
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		users []model.UserAccount
		logs  []model.TravelLogEntry
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		users, err = h.api.ListUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = h.api.AllTravels(ctx)
		return err
	})

	var flash *view.Flash
	if err := g.Wait(); err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("admin dashboard: %v", err)
		flash = &view.Flash{Kind: view.FlashError, Message: apiclient.Message(err, "Failed to load dashboard data.")}
	}

	q := r.URL.Query()
	data := adminPage{
		Query:     q.Get("q"),
		Selected:  q.Get("user"),
		Users:     users,
		Filtered:  travel.FilterUsers(users, q.Get("q")),
		Groups:    travel.GroupByUser(logs),
		Distances: travel.DistanceByUser(users, logs),
		Summary:   travel.Summarize(logs),
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			data.Admins++
		} else {
			data.Employees++
		}
	}
	h.pages.render(w, r, http.StatusOK, "admin", view.Page{Title: "Admin", Flash: flash, Data: data})
}

func emailParam(r *http.Request) string {
	raw := chi.URLParam(r, "email")
	if email, err := url.PathUnescape(raw); err == nil {
		return email
	}
	return raw
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	role := model.Role(strings.TrimSpace(r.FormValue("role")))
	if email == "" || !role.Valid() {
		h.pages.redirect(w, r, adminPath, view.FlashError, "Unknown role.")
		return
	}
	if err := h.api.UpdateUser(r.Context(), email, model.AdminUserUpdate{Role: &role}); err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("admin set role %s=%s: %v", email, role, err)
		h.pages.redirect(w, r, adminPath, view.FlashError, apiclient.Message(err, "Failed to update role."))
		return
	}
	logger.Infof("admin %s: role %s -> %s", middleware.CurrentUser(r.Context()).Email, email, role)
	h.pages.redirect(w, r, adminPath, view.FlashSuccess, fmt.Sprintf("Role for %s updated to %s.", email, role))
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email := emailParam(r)
	if email == "" {
		h.pages.redirect(w, r, adminPath, view.FlashError, "User not specified.")
		return
	}
	if strings.EqualFold(email, middleware.CurrentUser(r.Context()).Email) {
		h.pages.redirect(w, r, adminPath, view.FlashError, "You cannot delete your own account.")
		return
	}
	if err := h.api.DeleteUser(r.Context(), email); err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("admin delete %s: %v", email, err)
		h.pages.redirect(w, r, adminPath, view.FlashError, apiclient.Message(err, "Failed to delete user."))
		return
	}
	logger.Infof("admin %s: deleted %s", middleware.CurrentUser(r.Context()).Email, email)
	h.pages.redirect(w, r, adminPath, view.FlashSuccess, "User "+email+" deleted.")
}

func (h *AdminHandler) ExportUsers(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.pages.renderError(w, r, http.StatusBadRequest, "Unknown export format.")
		return
	}
	users, err := h.api.ListUsers(r.Context())
	if err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("export users: %v", err)
		h.pages.redirect(w, r, adminPath, view.FlashError, apiclient.Message(err, "Failed to load users."))
		return
	}
	h.send(w, r, format, "users", export.UsersTable(users))
}

func (h *AdminHandler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		h.pages.renderError(w, r, http.StatusBadRequest, "Unknown export format.")
		return
	}
	email := strings.TrimSpace(q.Get("email"))
	if email == "" {
		h.pages.redirect(w, r, adminPath, view.FlashError, "User not specified.")
		return
	}
	logs, err := h.api.AllTravels(r.Context())
	if err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("export logs %s: %v", email, err)
		h.pages.redirect(w, r, adminPath, view.FlashError, apiclient.Message(err, "Failed to load travel logs."))
		return
	}
	base := "travel_logs_" + strings.NewReplacer("@", "_at_", ".", "_").Replace(email)
	h.send(w, r, format, base, export.LogsTable(email, travel.LogsFor(logs, email)))
}

// send формирует файл целиком в памяти: ошибка выгрузки не оставляет полуотправленный ответ.
func (h *AdminHandler) send(w http.ResponseWriter, r *http.Request, format export.Format, base string, t export.Table) {
	defer logger.DeferLogDuration("export "+base+"."+string(format), time.Now())()
	now := h.now()
	var buf bytes.Buffer
	if err := export.Write(&buf, format, t, now); err != nil {
		if errors.Is(err, export.ErrNoData) {
			h.pages.redirect(w, r, adminPath, view.FlashInfo, "No data available to download.")
			return
		}
		logger.Errorf("export %s: %v", base, err)
		h.pages.redirect(w, r, adminPath, view.FlashError, "Export failed.")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(base, format, now)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Errorf("export %s: write: %v", base, err)
	}
}
