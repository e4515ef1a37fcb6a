package timeutil

import (
	"testing"
	"time"
)

func TestToDisplayLocalCanonicalInput(t *testing.T) {
	got, err := ToDisplayLocal("2024-03-10 18:30:00")
	if err != nil {
		t.Fatalf("ToDisplayLocal: %v", err)
	}
	want := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC).Local().Format(DisplayLayout)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToDisplayLocalExplicitUTC(t *testing.T) {
	got, err := ToDisplayLocal("2024-03-10T18:30:00Z")
	if err != nil {
		t.Fatalf("ToDisplayLocal: %v", err)
	}
	want := time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC).Local().Format(DisplayLayout)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToDisplayLocalAmbiguousStaysLocal(t *testing.T) {
	// No zone marker: the value is taken as already local, only truncated.
	got, err := ToDisplayLocal("2024-03-10T18:30:45")
	if err != nil {
		t.Fatalf("ToDisplayLocal: %v", err)
	}
	if got != "2024-03-10T18:30" {
		t.Fatalf("got %q, want 2024-03-10T18:30", got)
	}
}

func TestToCanonicalUTCRejectsPartialInput(t *testing.T) {
	for _, in := range []string{"", "2024-03-10", "18:30", "2024-03-10T", "T18:30"} {
		if _, err := ToCanonicalUTC(in); err == nil {
			t.Fatalf("ToCanonicalUTC(%q) expected error", in)
		}
	}
}

func TestRoundTripPreservesInstant(t *testing.T) {
	cases := []string{
		"2024-03-10 18:30:00",
		"2024-12-31 23:45:00",
		"2023-06-01 00:00:00",
	}
	for _, canonical := range cases {
		display, err := ToDisplayLocal(canonical)
		if err != nil {
			t.Fatalf("ToDisplayLocal(%q): %v", canonical, err)
		}
		back, err := ToCanonicalUTC(display)
		if err != nil {
			t.Fatalf("ToCanonicalUTC(%q): %v", display, err)
		}
		if back != canonical {
			t.Fatalf("round trip %q -> %q -> %q", canonical, display, back)
		}
	}
}

func TestToCanonicalUTCProducesUTC(t *testing.T) {
	local := time.Date(2024, 3, 10, 18, 30, 0, 0, time.Local)
	got, err := ToCanonicalUTC(local.Format(DisplayLayout))
	if err != nil {
		t.Fatalf("ToCanonicalUTC: %v", err)
	}
	want := local.UTC().Format(CanonicalLayout)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
