package handler

import (
	"net/http"
	"strings"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/view"
)

type ProfileHandler struct {
	api   ProfileAPI
	pages *Pages
}

func NewProfileHandler(api ProfileAPI, pages *Pages) *ProfileHandler {
	return &ProfileHandler{api: api, pages: pages}
}

type profilePage struct {
	Account *model.UserAccount
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	account, err := h.api.Me(r.Context())
	if err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("profile: %v", err)
		h.pages.render(w, r, http.StatusOK, "profile", view.Page{
			Title: "Profile",
			Flash: &view.Flash{Kind: view.FlashError, Message: apiclient.Message(err, "Failed to load profile.")},
			Data:  profilePage{},
		})
		return
	}
	h.pages.render(w, r, http.StatusOK, "profile", view.Page{Title: "Profile", Data: profilePage{Account: account}})
}

// Update меняет только имя и номер топливной карты; email и роль сотрудник не редактирует.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	card := strings.TrimSpace(r.FormValue("fuel_card_no"))
	if name == "" {
		h.pages.redirect(w, r, "/profile", view.FlashError, "Name cannot be empty.")
		return
	}
	if err := h.api.UpdateMe(r.Context(), model.ProfileUpdate{Name: &name, FuelCardNo: &card}); err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("profile update: %v", err)
		h.pages.redirect(w, r, "/profile", view.FlashError, apiclient.Message(err, "Failed to update profile."))
		return
	}
	h.pages.redirect(w, r, "/profile", view.FlashSuccess, "Profile updated.")
}
