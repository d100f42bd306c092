package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// datePattern pairs a recognizer regex with the Go layout used to parse
// strings it matches. Order matters: day-first layouts are the statement
// convention, so they are tried before year-first ones.
type datePattern struct {
	re     *regexp.Regexp
	layout string
}

var datePatterns = []datePattern{
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`), "2/1/2006"},
	{regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`), "2-1-2006"},
	{regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`), "2.1.2006"},
	{regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2}$`), "2006/1/2"},
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`), "2006-1-2"},
}

// Two-digit years are deliberately absent from the table: time.Parse
// pivots them at 69, while statements use a pivot of 50. They fall
// through to manualDateParse, which applies the 50 pivot.

var nonDateChars = regexp.MustCompile(`[^\d/\-.]`)

// ParseDate normalizes a statement date string to a calendar date.
// Known layouts are tried first; a manual day/month/year split is the
// last resort. Two-digit years pivot at 50 (49 -> 2049, 50 -> 1950).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("date string cannot be empty")
	}

	for _, dp := range datePatterns {
		if dp.re.MatchString(s) {
			if t, err := time.Parse(dp.layout, s); err == nil {
				return t, nil
			}
		}
	}

	if t, ok := manualDateParse(s); ok {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date '%s'", s)
}

// manualDateParse handles layouts the pattern table misses, such as
// dates with stray characters around the separators.
func manualDateParse(s string) (time.Time, bool) {
	clean := nonDateChars.ReplaceAllString(s, "")

	for _, sep := range []string{"/", "-", "."} {
		parts := strings.Split(clean, sep)
		if len(parts) != 3 {
			continue
		}

		day, err1 := strconv.Atoi(parts[0])
		month, err2 := strconv.Atoi(parts[1])
		year, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		if year < 100 {
			if year < 50 {
				year += 2000
			} else {
				year += 1900
			}
		}

		if day < 1 || day > 31 || month < 1 || month > 12 {
			continue
		}

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (e.g. 31/02), which would accept
		// an invalid statement date; reject those.
		if t.Day() != day || t.Month() != time.Month(month) {
			continue
		}
		return t, true
	}

	return time.Time{}, false
}

// ValidDate reports whether s contains a parseable date.
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// FormatDate renders a date in the DD/MM/YYYY statement convention.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// DetectDateLayout returns the Go layout that parses s, or an error if
// no known layout matches. Used by the bank detector to characterize a
// statement's date convention.
func DetectDateLayout(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, dp := range datePatterns {
		if dp.re.MatchString(s) {
			if _, err := time.Parse(dp.layout, s); err == nil {
				return dp.layout, nil
			}
		}
	}
	return "", fmt.Errorf("no known date layout for '%s'", s)
}
