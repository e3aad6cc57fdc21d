package drift

import "testing"

func TestMatchHost(t *testing.T) {
	cases := []struct {
		pattern   string
		candidate string
		want      bool
	}{
		{"*.example.com", "a.example.com", true},
		{"*.example.com", "a.b.example.com", true},
		{"*.example.com", "example.com", false},
		{"api.example.com", "api.example.com", true},
		{"api.example.com", "api2example.com", false}, // dot is literal
		{"api.example.com", "apiXexample.com", false},
		{"cdn?.example.com", "cdn1.example.com", true},
		{"cdn?.example.com", "cdn12.example.com", false},
		{"*.Example.COM", "a.example.com", true}, // case-insensitive
		{"*", "anything.at.all", true},
		{"", "", true},
		{"", "x", false},
	}

	for _, tc := range cases {
		if got := MatchHost(tc.pattern, tc.candidate); got != tc.want {
			t.Errorf("MatchHost(%q, %q) = %v, want %v", tc.pattern, tc.candidate, got, tc.want)
		}
	}
}

func TestMatchHostNoSubstring(t *testing.T) {
	// The pattern is anchored; a bare hostname must not match inside a
	// longer candidate.
	if MatchHost("example.com", "evil-example.com") {
		t.Fatal("expected anchored match to reject superstring candidate")
	}
	if MatchHost("example.com", "example.com.evil.net") {
		t.Fatal("expected anchored match to reject prefixed candidate")
	}
}

func TestCompilePatternPortAndMeta(t *testing.T) {
	if !MatchHost("localhost:????", "localhost:8080") {
		t.Fatal("expected ? to match single characters in port")
	}
	if MatchHost("a+b.com", "aab.com") {
		t.Fatal("expected + to be treated literally")
	}
	if !MatchHost("a+b.com", "a+b.com") {
		t.Fatal("expected literal + pattern to match itself")
	}
}
