// Package timeutil converts between the canonical UTC wire form of a
// timestamp ("2006-01-02 15:04:05", always UTC) and the local display
// form used for editing ("2006-01-02T15:04").
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	CanonicalLayout = "2006-01-02 15:04:05"
	DisplayLayout   = "2006-01-02T15:04"
)

// ToDisplayLocal renders a canonical UTC instant in local display form.
// Accepted inputs: the canonical DB form (assumed UTC), or an ISO/RFC3339
// string carrying an explicit zone. A "T"-separated string without a zone
// marker is ambiguous and treated as already local, not silently shifted.
func ToDisplayLocal(value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("empty datetime")
	}

	if t, err := time.Parse(CanonicalLayout, v); err == nil {
		return t.UTC().Local().Format(DisplayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Local().Format(DisplayLayout), nil
	}
	if t, err := time.Parse("2006-01-02T15:04Z07:00", v); err == nil {
		return t.Local().Format(DisplayLayout), nil
	}

	// Ambiguous local-looking input: keep it local, truncate to minutes.
	for _, layout := range []string{DisplayLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t.Format(DisplayLayout), nil
		}
	}

	return "", fmt.Errorf("unrecognized datetime %q", value)
}

// ToCanonicalUTC parses a local display string and renders it in the
// canonical UTC wire form. Fails when the date or time part is missing.
func ToCanonicalUTC(local string) (string, error) {
	v := strings.TrimSpace(local)
	date, clock, ok := strings.Cut(v, "T")
	if !ok || date == "" || clock == "" {
		return "", fmt.Errorf("datetime %q must contain both date and time", local)
	}

	for _, layout := range []string{DisplayLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t.UTC().Format(CanonicalLayout), nil
		}
	}

	return "", fmt.Errorf("invalid local datetime %q", local)
}

// LocalDate renders t as a local calendar date, the form list filters use.
func LocalDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
