package ident

import (
	"strings"
	"testing"
	"time"
)

func TestNewShapeAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if len(id) != Size {
			t.Fatalf("len(%q) = %d want %d", id, len(id), Size)
		}
		if !IsID(id) {
			t.Fatalf("IsID(%q) = false for generated id", id)
		}
		if id != strings.ToLower(id) {
			t.Fatalf("id %q is not lowercase hex", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q after %d draws", id, i)
		}
		seen[id] = true
	}
}

func TestIsID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"507F1F77BCF86CD799439011", true}, // uppercase hex accepted
		{"507f1f77bcf86cd79943901", false}, // 23 chars
		{"507f1f77bcf86cd7994390111", false},
		{"507f1f77bcf86cd79943901g", false}, // non-hex
		{"", false},
		{"not-an-id-at-all-really!", false},
	}
	for _, c := range cases {
		if got := IsID(c.in); got != c.want {
			t.Fatalf("IsID(%q) = %v want %v", c.in, got, c.want)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id := NewAt(at)
	got := Time(id)
	if !got.Equal(at) {
		t.Fatalf("Time(%q) = %v want %v", id, got, at)
	}
	if !Time("bogus").IsZero() {
		t.Fatalf("Time on malformed id should be zero")
	}
}
