package timezone

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoad_Rejects(t *testing.T) {
	for _, name := range []string{"", "  ", "Local", "Mars/Olympus_Mons"} {
		if _, err := Load(name); !errors.Is(err, ErrInvalidTimezone) {
			t.Fatalf("Load(%q): expected ErrInvalidTimezone, got %v", name, err)
		}
	}
	if _, err := Load("Europe/Berlin"); err != nil {
		t.Fatalf("Load(Europe/Berlin): %v", err)
	}
}

func TestCivilDateToUTC(t *testing.T) {
	got, err := CivilDateToUTC(2023, time.October, 1, "UTC")
	if err != nil {
		t.Fatalf("CivilDateToUTC: %v", err)
	}
	if got.Unix() != 1696118400 {
		t.Fatalf("expected 1696118400, got %d", got.Unix())
	}

	// New York is UTC-4 on 2023-10-01.
	ny, err := CivilDateToUTC(2023, time.October, 1, "America/New_York")
	if err != nil {
		t.Fatalf("CivilDateToUTC: %v", err)
	}
	if ny.Unix()-got.Unix() != 4*3600 {
		t.Fatalf("expected a 4h offset, got %ds", ny.Unix()-got.Unix())
	}

	// Tokyo is UTC+9, so local midnight is the previous UTC day.
	tokyo, err := CivilDateToUTC(2023, time.October, 1, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("CivilDateToUTC: %v", err)
	}
	if tokyo.Unix() != 1696118400-9*3600 {
		t.Fatalf("unexpected Tokyo midnight %d", tokyo.Unix())
	}
	if tokyo.Location() != time.UTC {
		t.Fatalf("expected result in UTC, got %s", tokyo.Location())
	}
}

func TestLocalMidnight(t *testing.T) {
	loc, err := Load("America/New_York")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// 2023-10-02T02:00Z is still Oct 1 in New York.
	got := LocalMidnight(time.Unix(1696212000, 0), loc)
	want := CivilDateToInstant(2023, time.October, 1, loc)
	if !got.Equal(want) {
		t.Fatalf("LocalMidnight = %s, want %s", got, want)
	}
}

func TestFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(slog.New(slog.NewJSONHandler(&buf, nil)))
	instant := time.Unix(1696125600, 0) // 2023-10-01T02:00:00Z

	if got := f.FormatDate(instant, "America/New_York"); got != "2023-09-30" {
		t.Fatalf("FormatDate = %q", got)
	}
	if got := f.FormatTime(instant, "America/New_York"); got != "22:00" {
		t.Fatalf("FormatTime = %q", got)
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %s", buf.String())
	}

	if got := f.FormatTime(instant, "Nowhere/Zone"); got != "2023-10-01T02:00:00Z" {
		t.Fatalf("fallback = %q", got)
	}
	if !strings.Contains(buf.String(), "timezone formatting failed") {
		t.Fatalf("expected fallback to be logged, got %q", buf.String())
	}
}
