package geoip

import (
	"errors"
	"testing"
)

func TestNewResolverEmptyPath(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil resolver for empty path")
	}
	if _, err := r.CountryCode("203.0.113.9"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}

func TestParseIP(t *testing.T) {
	cases := map[string]string{
		"203.0.113.9":       "203.0.113.9",
		"203.0.113.9:54321": "203.0.113.9",
		"[2001:db8::1]:443": "2001:db8::1",
		"2001:db8::1":       "2001:db8::1",
	}
	for in, want := range cases {
		got := parseIP(in)
		if got == nil || got.String() != want {
			t.Fatalf("parseIP(%q) = %v, want %s", in, got, want)
		}
	}
	if parseIP("not-an-ip") != nil {
		t.Fatalf("expected nil for invalid input")
	}
}
