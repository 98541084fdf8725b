// Package view — HTML-страницы веб-фронта. Шаблоны встроены в бинарник.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/travel"
)

//go:embed templates/*.html
var files embed.FS

// Pages — страницы, у каждой свой файл templates/<name>.html поверх layout.html.
var Pages = []string{"login", "register", "forgot", "reset", "travels", "profile", "admin", "error"}

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash — одноразовое уведомление над страницей.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Page — общие поля layout и данные конкретной страницы.
type Page struct {
	Title string
	User  *model.SessionUser
	Flash *Flash
	Data  any
}

func (p Page) IsAdmin() bool {
	return p.User != nil && p.User.Role == model.RoleAdmin
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"km":      formatKm,
	"meter":   formatMeter,
	"totalKm": travel.TotalKm,
	"initial": func(s string) string {
		for _, r := range s {
			return string(r)
		}
		return "?"
	},
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMeter(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatKm(*v)
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("view %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render выполняет шаблон в буфер: при ошибке в w ничего не записано.
func (r *Renderer) Render(w io.Writer, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("view %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
