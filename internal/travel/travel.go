// Package travel — расчёты по журналу поездок: пробег записи, сводка, группировка для админки.
package travel

import (
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/fueltrackr/internal/model"
)

// TotalKm — пробег записи. Единственное место, где решается, что показывать:
// разница показаний одометра, если оба показания есть и конец не меньше начала,
// иначе total_km от сервера, иначе 0.
func TotalKm(e model.TravelLogEntry) float64 {
	if e.MeterStart != nil && e.MeterEnd != nil && *e.MeterEnd >= *e.MeterStart {
		return *e.MeterEnd - *e.MeterStart
	}
	if e.TotalKm != nil {
		return *e.TotalKm
	}
	return 0
}

// Summary — карточки над таблицей.
type Summary struct {
	Entries    int
	TotalKm    float64
	OfficialKm float64
	PrivateKm  float64
}

func Summarize(entries []model.TravelLogEntry) Summary {
	s := Summary{Entries: len(entries)}
	for _, e := range entries {
		s.TotalKm += TotalKm(e)
		s.OfficialKm += e.OfficialKm
		s.PrivateKm += e.PrivateKm
	}
	return s
}

// createdAt — время создания записи. Если created_at нет, берётся время из Mongo ObjectId
// (первые 4 байта — unix-секунды), затем дата поездки.
func createdAt(e model.TravelLogEntry) time.Time {
	if e.CreatedAt != nil && !e.CreatedAt.IsZero() {
		return e.CreatedAt.Time
	}
	if len(e.ID) >= 8 {
		if b, err := hex.DecodeString(e.ID[:8]); err == nil {
			sec := int64(b[0])<<24 | int64(b[1])<<16 | int64(b[2])<<8 | int64(b[3])
			return time.Unix(sec, 0).UTC()
		}
	}
	d, _ := time.Parse("2006-01-02", e.Date)
	return d
}

// SortNewestFirst сортирует на месте: последняя добавленная запись первой.
func SortNewestFirst(entries []model.TravelLogEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return createdAt(entries[i]).After(createdAt(entries[j]))
	})
}

// NextMeterStart — конец последней поездки становится началом следующей.
// entries должны быть отсортированы SortNewestFirst.
func NextMeterStart(entries []model.TravelLogEntry) (float64, bool) {
	if len(entries) == 0 || entries[0].MeterEnd == nil {
		return 0, false
	}
	return *entries[0].MeterEnd, true
}

// UserLogs — записи одного сотрудника в админке.
type UserLogs struct {
	Email   string
	Entries []model.TravelLogEntry
	Summary Summary
}

// GroupByUser группирует записи по email (по алфавиту), внутри — по дате поездки, новые первыми.
func GroupByUser(entries []model.TravelLogEntry) []UserLogs {
	byEmail := make(map[string][]model.TravelLogEntry)
	for _, e := range entries {
		byEmail[e.UserEmail] = append(byEmail[e.UserEmail], e)
	}
	groups := make([]UserLogs, 0, len(byEmail))
	for email, list := range byEmail {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Date > list[j].Date })
		groups = append(groups, UserLogs{Email: email, Entries: list, Summary: Summarize(list)})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Email < groups[j].Email })
	return groups
}

// LogsFor — записи одного пользователя в порядке GroupByUser.
func LogsFor(entries []model.TravelLogEntry, email string) []model.TravelLogEntry {
	for _, g := range GroupByUser(entries) {
		if strings.EqualFold(g.Email, email) {
			return g.Entries
		}
	}
	return nil
}

// UserDistance — строка графика «пробег по сотрудникам».
type UserDistance struct {
	Name    string
	Email   string
	TotalKm float64
}

func DistanceByUser(users []model.UserAccount, entries []model.TravelLogEntry) []UserDistance {
	totals := make(map[string]float64)
	for _, e := range entries {
		totals[e.UserEmail] += TotalKm(e)
	}
	out := make([]UserDistance, 0, len(users))
	for _, u := range users {
		out = append(out, UserDistance{Name: u.Name, Email: u.Email, TotalKm: totals[u.Email]})
	}
	return out
}

// FilterUsers — поиск без учёта регистра по имени или email.
func FilterUsers(users []model.UserAccount, query string) []model.UserAccount {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return users
	}
	var out []model.UserAccount
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}
