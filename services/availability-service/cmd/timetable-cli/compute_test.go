package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/availability"
)

func writeData(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	events := filepath.Join(dir, "events.json")
	rules := filepath.Join(dir, "workhours.yaml")
	if err := os.WriteFile(events, []byte(`[{"begin_at":1696154400,"end_at":1696158000}]`), 0o600); err != nil {
		t.Fatalf("write events: %v", err)
	}
	body := "- weekday: 1\n  open_interval: 32400\n  close_interval: 43200\n- weekday: 2\n  is_day_off: true\n"
	if err := os.WriteFile(rules, []byte(body), 0o600); err != nil {
		t.Fatalf("write workhours: %v", err)
	}
	return events, rules
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompute_JSON(t *testing.T) {
	events, rules := writeData(t)
	out, err := runCLI(t, "compute",
		"--events", events, "--workhours", rules,
		"--start", "20231001", "--tz", "UTC", "--duration", "3600", "--interval", "3600",
		"--days", "2", "--reference-date", "20231001",
	)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	var days []availability.DayTimetable
	if err := json.Unmarshal([]byte(out), &days); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	// Sunday 09:00-12:00 with 10:00-11:00 booked leaves 09:00 and 11:00.
	if len(days[0].Timeslots) != 2 || days[0].Timeslots[1].BeginAt != 1696158000 {
		t.Fatalf("unexpected Sunday %+v", days[0])
	}
	if !days[1].IsDayOff || days[1].DayModifier != 1 {
		t.Fatalf("expected Monday off, got %+v", days[1])
	}
}

func TestCompute_Human(t *testing.T) {
	events, rules := writeData(t)
	out, err := runCLI(t, "compute",
		"--events", events, "--workhours", rules,
		"--start", "20231001", "--tz", "UTC", "--duration", "3600", "--interval", "3600",
		"--days", "2", "--reference-date", "20231001", "--human",
	)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	want := "2023-10-01 (+0)\n  09:00-10:00 11:00-12:00\n2023-10-02 (+1) day off\n"
	if out != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", out, want)
	}
}

func TestCompute_InvalidTimezone(t *testing.T) {
	_, err := runCLI(t, "compute", "--start", "20231001", "--tz", "Not/AZone", "--duration", "60", "--ignore-schedule", "--ignore-workhour")
	if err == nil || !strings.Contains(err.Error(), "invalid timezone") {
		t.Fatalf("expected invalid timezone error, got %v", err)
	}
}

func TestCompute_RequiresFlags(t *testing.T) {
	if _, err := runCLI(t, "compute", "--tz", "UTC"); err == nil {
		t.Fatalf("expected missing flag error")
	}
}
