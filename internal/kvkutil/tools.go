// Package kvkutil holds small helpers shared by the sync apps: KVK number
// normalization, registry date parsing and time window chunking.
package kvkutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// KVKNummerLength is the canonical width of a KVK number.
	KVKNummerLength = 8
	// VestigingsnummerLength is the canonical width of an establishment number.
	VestigingsnummerLength = 12

	// windowSize caps a single Mutatieservice query range.
	windowSize = 7 * 24 * time.Hour
)

var (
	ErrEmptyNummer = errors.New("requires a non-empty string")
	ErrNoDigits    = errors.New("no digits found")
)

// CleanAndPad strips every non-digit character and left-pads the result with
// zeros to the requested width. Formatted inputs like "12.345.678" or
// "12 345 678" normalize to "12345678".
func CleanAndPad(raw string, fill int) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("clean and pad %q: %w", raw, ErrEmptyNummer)
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", fmt.Errorf("clean and pad %q: %w", raw, ErrNoDigits)
	}

	s := digits.String()
	if len(s) >= fill {
		return s[len(s)-fill:], nil
	}
	return strings.Repeat("0", fill-len(s)) + s, nil
}

// CleanKVKNummer normalizes a KVK number to its canonical 8-digit form.
func CleanKVKNummer(raw string) (string, error) {
	return CleanAndPad(raw, KVKNummerLength)
}

// CleanVestigingsnummer normalizes an establishment number to 12 digits.
func CleanVestigingsnummer(raw string) (string, error) {
	return CleanAndPad(raw, VestigingsnummerLength)
}

// ParseKVKDatum parses the date formats the registry emits: "DD-MM-YYYY" and
// "YYYYMMDD". In the compact form the registry uses 00 for an unknown day or
// month, which clamps to 1. Returns ok=false for empty, "None" and
// unparseable input.
func ParseKVKDatum(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "None" {
		return time.Time{}, false
	}

	if t, err := time.Parse("02-01-2006", s); err == nil {
		return t, true
	}

	if len(s) != 8 {
		return time.Time{}, false
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(s[6:8])
	if err != nil {
		return time.Time{}, false
	}

	// Unknown day or month is encoded as 00.
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	if month > 12 || day > 31 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 30); reject anything that moved.
	if int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// FormatDatum rewrites a compact "YYYYMMDD" registry date to "DD-MM-YYYY".
// Empty and "None" map to the empty string; anything that does not parse as
// a real date is returned unchanged.
func FormatDatum(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "None" {
		return ""
	}
	t, err := time.Parse("20060102", s)
	if err != nil {
		return raw
	}
	return t.Format("02-01-2006")
}

// TruncateFloat renders a coordinate with five decimals, truncated rather
// than rounded, using the comma decimal separator the mirror stores. Zero
// maps to the empty string (absent coordinate). Truncation happens on the
// shortest decimal form: multiplying by 1e5 first would push values like
// 4.9041 just below the boundary and lose the fifth decimal.
func TruncateFloat(f float64) string {
	if f == 0 {
		return ""
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	switch {
	case dot == -1:
		s += ".00000"
	case len(s)-dot-1 < 5:
		s += strings.Repeat("0", 5-(len(s)-dot-1))
	default:
		s = s[:dot+6]
	}
	return strings.Replace(s, ".", ",", 1)
}

// Window is a single [From, To) slice of a Mutatieservice query range.
type Window struct {
	From time.Time
	To   time.Time
}

// TimeWindows chunks [from, to) into windows of at most seven days. An empty
// or inverted range yields nil.
func TimeWindows(from, to time.Time) []Window {
	if !from.Before(to) {
		return nil
	}

	var windows []Window
	for cur := from; cur.Before(to); {
		end := cur.Add(windowSize)
		if end.After(to) {
			end = to
		}
		windows = append(windows, Window{From: cur, To: end})
		cur = end
	}
	return windows
}
