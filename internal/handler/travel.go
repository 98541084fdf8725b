package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fueltrackr/internal/apiclient"
	"github.com/fueltrackr/internal/logger"
	"github.com/fueltrackr/internal/middleware"
	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/travel"
	"github.com/fueltrackr/internal/view"
)

// TravelHandler — страница сотрудника: журнал поездок и форма новой записи.
type TravelHandler struct {
	api   TravelAPI
	pages *Pages
	now   func() time.Time
}

func NewTravelHandler(api TravelAPI, pages *Pages) *TravelHandler {
	return &TravelHandler{api: api, pages: pages, now: time.Now}
}

type travelForm struct {
	Date       string
	MeterStart string
	MeterEnd   string
	OfficialKm string
	PrivateKm  string
	Remarks    string
}

type travelsPage struct {
	Entries    []model.TravelLogEntry
	Summary    travel.Summary
	Form       travelForm
	FieldError *travel.FieldError
}

// load — журнал текущего пользователя, новые первыми. При ошибке API страница
// показывается пустой с уведомлением; false — уже отправлен редирект на вход.
func (h *TravelHandler) load(w http.ResponseWriter, r *http.Request) ([]model.TravelLogEntry, *view.Flash, bool) {
	entries, err := h.api.MyTravels(r.Context())
	if err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return nil, nil, false
		}
		logger.Errorf("travels %s: %v", middleware.CurrentUser(r.Context()).Email, err)
		return nil, &view.Flash{Kind: view.FlashError, Message: apiclient.Message(err, "Failed to load travel logs.")}, true
	}
	travel.SortNewestFirst(entries)
	return entries, nil, true
}

func (h *TravelHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	entries, flash, ok := h.load(w, r)
	if !ok {
		return
	}
	form := travelForm{Date: h.now().Format("2006-01-02")}
	if start, ok := travel.NextMeterStart(entries); ok {
		form.MeterStart = formatKm(start)
	}
	h.pages.render(w, r, http.StatusOK, "travels", view.Page{
		Title: "My travels",
		Flash: flash,
		Data:  travelsPage{Entries: entries, Summary: travel.Summarize(entries), Form: form},
	})
}

func (h *TravelHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.renderError(w, r, http.StatusBadRequest, "Invalid form")
		return
	}
	entry, err := travel.ParseForm(r.PostForm, h.now())
	if err != nil {
		var fe *travel.FieldError
		if !errors.As(err, &fe) {
			h.pages.renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		entries, _, ok := h.load(w, r)
		if !ok {
			return
		}
		h.pages.render(w, r, http.StatusBadRequest, "travels", view.Page{
			Title: "My travels",
			Flash: &view.Flash{Kind: view.FlashError, Message: fe.Message},
			Data: travelsPage{
				Entries:    entries,
				Summary:    travel.Summarize(entries),
				Form:       formValues(r),
				FieldError: fe,
			},
		})
		return
	}
	if err := h.api.CreateTravel(r.Context(), entry); err != nil {
		if h.pages.sessionExpired(w, r, err) {
			return
		}
		logger.Errorf("create travel %s: %v", middleware.CurrentUser(r.Context()).Email, err)
		h.pages.redirect(w, r, middleware.LandingPath, view.FlashError, apiclient.Message(err, "Failed to save travel log."))
		return
	}
	h.pages.redirect(w, r, middleware.LandingPath, view.FlashSuccess, "Travel log added.")
}

func formValues(r *http.Request) travelForm {
	f := r.PostForm
	return travelForm{
		Date:       f.Get("date"),
		MeterStart: f.Get("meter_start"),
		MeterEnd:   f.Get("meter_end"),
		OfficialKm: f.Get("official_km"),
		PrivateKm:  f.Get("private_km"),
		Remarks:    f.Get("remarks"),
	}
}
