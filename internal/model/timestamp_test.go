package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampAcceptsNaiveAPITime(t *testing.T) {
	var e TravelLogEntry
	body := `{"user_email":"a@haycarb.com","date":"2025-03-01","official_km":5,"private_km":1,"created_at":"2025-03-01T08:15:00.123000"}`
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2025, 3, 1, 8, 15, 0, 123000000, time.UTC)
	if e.CreatedAt == nil || !e.CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, e.CreatedAt)
	}
	if e.MeterStart != nil || e.TotalKm != nil {
		t.Fatal("absent meter fields must stay nil")
	}
}

func TestTimestampNull(t *testing.T) {
	var u UserAccount
	if err := json.Unmarshal([]byte(`{"email":"a@haycarb.com","created_at":null}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if u.CreatedAt != nil {
		t.Fatalf("expected nil, got %v", u.CreatedAt)
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := ts.UnmarshalJSON([]byte(`"yesterday"`)); err == nil {
		t.Fatal("expected error")
	}
}
