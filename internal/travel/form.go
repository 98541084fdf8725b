package travel

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fueltrackr/internal/model"
)

const dateLayout = "2006-01-02"

// FieldError — ошибка конкретного поля формы, текст показывается пользователю.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func parseKm(values url.Values, field, label string) (float64, error) {
	raw := strings.TrimSpace(values.Get(field))
	if raw == "" {
		return 0, &FieldError{Field: field, Message: label + " is required"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Message: label + " must be a number"}
	}
	if v < 0 {
		return 0, &FieldError{Field: field, Message: label + " cannot be negative"}
	}
	return v, nil
}

// ParseForm проверяет форму новой поездки до отправки в API.
// Пустая дата — сегодняшняя (по now).
func ParseForm(values url.Values, now time.Time) (model.NewTravelLog, error) {
	var out model.NewTravelLog
	out.Date = strings.TrimSpace(values.Get("date"))
	if out.Date == "" {
		out.Date = now.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, out.Date); err != nil {
		return out, &FieldError{Field: "date", Message: "Travel date must be YYYY-MM-DD"}
	}
	var err error
	if out.MeterStart, err = parseKm(values, "meter_start", "Meter start"); err != nil {
		return out, err
	}
	if out.MeterEnd, err = parseKm(values, "meter_end", "Meter end"); err != nil {
		return out, err
	}
	if out.MeterEnd < out.MeterStart {
		return out, &FieldError{Field: "meter_end", Message: "End reading must be >= start"}
	}
	if out.OfficialKm, err = parseKm(values, "official_km", "Official KM"); err != nil {
		return out, err
	}
	if out.PrivateKm, err = parseKm(values, "private_km", "Private KM"); err != nil {
		return out, err
	}
	out.Remarks = strings.TrimSpace(values.Get("remarks"))
	return out, nil
}
