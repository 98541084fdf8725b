// Package export — выгрузка пользователей и журнала поездок в CSV, XLSX и PDF.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/travel"
)

var (
	ErrNoData        = errors.New("no data available to download")
	ErrUnknownFormat = errors.New("unknown export format")
)

type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
	PDF  Format = "pdf"
)

// ParseFormat — формат из query-параметра; пустая строка означает CSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return CSV, nil
	case CSV, XLSX, PDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case PDF:
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Filename — имя файла для Content-Disposition: base_YYYYMMDD.ext.
func Filename(base string, f Format, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", base, now.Format("20060102"), f)
}

// Table — то, что выгружается: заголовок отчёта, колонки и строки.
// Numeric отмечает колонки, которые в XLSX пишутся числами.
type Table struct {
	Sheet    string
	Title    string
	Subtitle string
	Header   []string
	Numeric  []bool
	Widths   []float64
	Rows     [][]string
}

func (t Table) numeric(col int) bool {
	return col < len(t.Numeric) && t.Numeric[col]
}

// cell — значение для CSV и XLSX. Текст, который табличный редактор принял бы
// за формулу (=, +, -, @, таб, CR в начале), экранируется апострофом.
// Числа в числовых колонках не трогаются.
func (t Table) cell(col int, v string) string {
	if v == "" || !strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return v
	}
	if t.numeric(col) {
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
	}
	return "'" + v
}

func UsersTable(users []model.UserAccount) Table {
	t := Table{
		Sheet:    "Users",
		Title:    "Users",
		Subtitle: fmt.Sprintf("%d registered users", len(users)),
		Header:   []string{"Name", "Email", "Role", "Fuel Card No"},
		Widths:   []float64{60, 90, 35, 50},
	}
	for _, u := range users {
		role := string(u.Role)
		if role == "" {
			role = string(model.RoleEmployee)
		}
		t.Rows = append(t.Rows, []string{u.Name, u.Email, role, u.FuelCardNo})
	}
	return t
}

// LogsTable — поездки одного сотрудника; итог пробега считается travel.TotalKm.
func LogsTable(email string, entries []model.TravelLogEntry) Table {
	sum := travel.Summarize(entries)
	t := Table{
		Sheet: "Travel Logs",
		Title: "Travel Logs - " + email,
		Subtitle: fmt.Sprintf("%d entries, total %s km (official %s, private %s)",
			sum.Entries, formatKm(sum.TotalKm), formatKm(sum.OfficialKm), formatKm(sum.PrivateKm)),
		Header:  []string{"Date", "Meter Start", "Meter End", "Official KM", "Private KM", "Total KM", "Remarks"},
		Numeric: []bool{false, true, true, true, true, true, false},
		Widths:  []float64{28, 30, 30, 30, 30, 30, 99},
	}
	for _, e := range entries {
		t.Rows = append(t.Rows, []string{
			e.Date,
			formatMeter(e.MeterStart),
			formatMeter(e.MeterEnd),
			formatKm(e.OfficialKm),
			formatKm(e.PrivateKm),
			formatKm(travel.TotalKm(e)),
			e.Remarks,
		})
	}
	return t
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMeter(v *float64) string {
	if v == nil {
		return ""
	}
	return formatKm(*v)
}

// Write выгружает таблицу в выбранном формате. Пустая таблица — ErrNoData.
func Write(w io.Writer, f Format, t Table, now time.Time) error {
	if len(t.Rows) == 0 {
		return ErrNoData
	}
	switch f {
	case CSV:
		return writeCSV(w, t)
	case XLSX:
		return writeXLSX(w, t)
	case PDF:
		return writePDF(w, t, now)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}
