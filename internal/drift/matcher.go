package drift

import (
	"regexp"
	"strings"
)

// CompilePattern converts a wildcard host pattern into an anchored,
// case-insensitive regular expression. `*` matches any run of characters,
// `?` matches a single character and every other regex metacharacter
// (dots especially, hostnames are full of them) is taken literally.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// MatchHost reports whether candidate matches the wildcard pattern.
// A malformed pattern never matches.
func MatchHost(pattern, candidate string) bool {
	re, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(candidate)
}
