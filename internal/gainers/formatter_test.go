package gainers

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestFormat_Empty(t *testing.T) {
	got := Format(nil, time.Now())
	if got != "No gainers found." {
		t.Errorf("Format(nil) = %q, want %q", got, "No gainers found.")
	}
}

func TestFormat_Table(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	reports := []Report{
		{
			Ticker:        "AAA",
			Name:          "Triple A Corp",
			Price:         10.4500,
			Volume:        1234567,
			WindowGainPct: 10.00,
			DayGainPct:    11.11,
			Timestamp:     now,
		},
		{
			Ticker:        "BBB",
			Name:          "A Company With A Very Long Display Name Inc",
			Price:         2.01,
			Volume:        999,
			WindowGainPct: -1.5,
			DayGainPct:    3.25,
			Timestamp:     now,
		},
	}

	got := Format(reports, now)

	for _, want := range []string{
		"TOP 2 GAINERS - 2026-08-28 10:30:00",
		"Ticker",
		"AAA",
		"Triple A Corp",
		"1,234,567",
		"+10.00%",
		"+11.11%",
		"-1.50%",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() missing %q in:\n%s", want, got)
		}
	}

	if strings.Contains(got, "A Company With A Very Long Display Name Inc") {
		t.Error("Format() should truncate names longer than 24 characters")
	}
	if !strings.Contains(got, "A Company With A Very Lo") {
		t.Error("Format() should keep the first 24 characters of a long name")
	}
}

func TestFormat_TruncatesMultiByteNamesByRune(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	reports := []Report{
		{
			Ticker: "GLE",
			Name:   "Société Générale Actions Européennes SA",
			Price:  25.10,
			Volume: 1000,
		},
		{
			Ticker: "ACC",
			Name:   strings.Repeat("é", 30),
			Price:  1.00,
			Volume: 1,
		},
	}

	got := Format(reports, now)

	if !utf8.ValidString(got) {
		t.Fatal("Format() emitted invalid UTF-8 after truncating a multi-byte name")
	}

	want := string([]rune("Société Générale Actions Européennes SA")[:24])
	if !strings.Contains(got, want) {
		t.Errorf("Format() should keep the first 24 runes %q in:\n%s", want, got)
	}
	if strings.Contains(got, strings.Repeat("é", 25)) {
		t.Error("Format() should truncate names to 24 runes")
	}
	if !strings.Contains(got, strings.Repeat("é", 24)) {
		t.Error("Format() should keep exactly 24 runes of an all-multi-byte name")
	}
}

func TestFormat_Deterministic(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	reports := []Report{{Ticker: "AAA", Name: "Alpha", Price: 1, Volume: 1}}

	if Format(reports, now) != Format(reports, now) {
		t.Error("Format() must be deterministic for identical input")
	}
}
