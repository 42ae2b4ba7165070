package utils

import (
	"testing"
)

func TestCanonicalHostname(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "example.com", expected: "example.com"},
		{name: "uppercase", input: "EXAMPLE.COM", expected: "example.com"},
		{name: "surrounding whitespace", input: "  example.com \t", expected: "example.com"},
		{name: "trailing dot", input: "example.com.", expected: "example.com"},
		{name: "multiple trailing dots", input: "example.com..", expected: "example.com"},
		{name: "www prefix", input: "www.example.com", expected: "example.com"},
		{name: "www prefix uppercase", input: "WWW.Example.com", expected: "example.com"},
		{name: "port suffix", input: "cdn.example.com:443", expected: "cdn.example.com"},
		{name: "www and port", input: "www.example.com:8080", expected: "example.com"},
		{name: "only strips leading www", input: "static.www.example.com", expected: "static.www.example.com"},
		{name: "idn label", input: "bücher.de", expected: "xn--bcher-kva.de"},
		{name: "empty", input: "", expected: ""},
		{name: "bare www label", input: "www.", expected: "www"},
		{name: "whitespace only", input: "   ", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalHostname(tt.input)
			if got != tt.expected {
				t.Errorf("CanonicalHostname(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalHostname_Idempotent(t *testing.T) {
	inputs := []string{"www.Example.com:80", "bücher.de", "a.b.c.", "localhost"}
	for _, input := range inputs {
		first := CanonicalHostname(input)
		second := CanonicalHostname(first)
		if first != second {
			t.Errorf("CanonicalHostname not idempotent for %q: %q then %q", input, first, second)
		}
	}
}

func TestStripPort(t *testing.T) {
	tests := map[string]string{
		"example.com:53": "example.com",
		"example.com":    "example.com",
		":53":            ":53",
		"a:b:c":          "a",
	}
	for in, want := range tests {
		if got := StripPort(in); got != want {
			t.Errorf("StripPort(%q) = %q, want %q", in, got, want)
		}
	}
}
