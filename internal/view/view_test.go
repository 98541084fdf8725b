package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fueltrackr/internal/model"
	"github.com/fueltrackr/internal/travel"
)

func km(v float64) *float64 { return &v }

func TestAllPagesParse(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(r.pages) != len(Pages) {
		t.Fatalf("expected %d pages, got %d", len(Pages), len(r.pages))
	}
}

func TestRenderLoginAnonymous(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	p := Page{Title: "Sign in", Flash: &Flash{Kind: FlashError, Message: "Login failed <retry>"}}
	if err := r.Render(&buf, "login", p); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, `href="/login"`) || strings.Contains(html, "Sign out") {
		t.Fatal("anonymous layout expected")
	}
	if !strings.Contains(html, "Login failed &lt;retry&gt;") {
		t.Fatal("flash must be escaped")
	}
}

func TestRenderTravelsUsesDerivedTotal(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	entries := []model.TravelLogEntry{{Date: "2025-01-02", MeterStart: km(100), MeterEnd: km(150)}, {Date: "2025-01-01", TotalKm: km(40)}}
	data := struct {
		Entries    []model.TravelLogEntry
		Summary    travel.Summary
		Form       struct{ Date, MeterStart, MeterEnd, OfficialKm, PrivateKm, Remarks string }
		FieldError *travel.FieldError
	}{Entries: entries, Summary: travel.Summarize(entries)}
	user := &model.SessionUser{Name: "Ann", Email: "ann@haycarb.com", Role: model.RoleEmployee}

	var buf bytes.Buffer
	if err := r.Render(&buf, "travels", Page{User: user, Data: data}); err != nil {
		t.Fatalf("render: %v", err)
	}
	html := buf.String()
	if !strings.Contains(html, "<td>50</td>") || !strings.Contains(html, "<td>40</td>") {
		t.Fatal("expected derived totals 50 and 40")
	}
	if !strings.Contains(html, "<strong>90</strong>") {
		t.Fatal("expected summary total 90")
	}
	if strings.Contains(html, `href="/admin"`) {
		t.Fatal("admin link must be hidden for employees")
	}
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, "nope", Page{}); err == nil || buf.Len() != 0 {
		t.Fatal("expected error and no output")
	}
}
