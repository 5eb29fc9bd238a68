package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugStrip      = regexp.MustCompile(`[^\w\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)

	datePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	timePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// Slugify lowercases title, drops everything but word characters, whitespace and hyphens,
// and turns whitespace runs and hyphen runs into single hyphens.
//
//	"My Test Event!!" -> "my-test-event"
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugWhitespace.ReplaceAllString(s, "-")
	return slugHyphens.ReplaceAllString(s, "-")
}

// slugCandidate returns base for attempt 0 and base-N after that.
func slugCandidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}

// NormalizeDate validates a YYYY-MM-DD calendar date and returns its canonical form.
// The date is checked against local calendar components, so no time zone can shift it.
func NormalizeDate(s string) (string, error) {
	m := datePattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return "", fmt.Errorf("invalid calendar date")
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// NormalizeTime validates an H:MM or HH:MM 24-hour time and returns it zero-padded.
func NormalizeTime(s string) (string, error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("time must be in HH:MM 24-hour format")
	}
	h, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", h, minute), nil
}
