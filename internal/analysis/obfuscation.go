package analysis

import (
	"math"
	"regexp"
	"strings"
)

// ScoreNotComputed marks a ratio with zero matches (or no content at all).
const ScoreNotComputed = -0.01

// packerSignature is the preamble emitted by the common Dean Edwards style
// JS packer.
const packerSignature = "eval(function(p,a,c,k,e,"

// packerScore is the fixed ratio reported when the packer preamble is
// present; the signature is binary, not density-based.
const packerScore = 100.0

var hexEscapePattern = regexp.MustCompile(`\\x[0-9a-fA-F]{2}`)

// ObfuscationScore holds the per-technique ratios for one script body,
// each in [0, 100] or ScoreNotComputed.
type ObfuscationScore struct {
	Unicode float64 `json:"unicode"`
	Hex     float64 `json:"hex"`
	Percent float64 `json:"percent"`
	Packer  float64 `json:"packer"`
}

// NotComputed reports whether no ratio could be computed at all,
// typically because the body was empty (cross-origin response blocking
// commonly produces zero-length bodies).
func (s ObfuscationScore) NotComputed() bool {
	return s.Unicode == ScoreNotComputed &&
		s.Hex == ScoreNotComputed &&
		s.Percent == ScoreNotComputed &&
		s.Packer == ScoreNotComputed
}

// Exceeds reports whether any ratio reaches the limit.
func (s ObfuscationScore) Exceeds(limit float64) bool {
	return s.Unicode >= limit || s.Hex >= limit || s.Percent >= limit || s.Packer >= limit
}

// ScoreContent computes the obfuscation ratios for a script body. It is a
// pure function of the text; empty content yields all sentinels.
func ScoreContent(content string) ObfuscationScore {
	score := ObfuscationScore{
		Unicode: ScoreNotComputed,
		Hex:     ScoreNotComputed,
		Percent: ScoreNotComputed,
		Packer:  ScoreNotComputed,
	}
	length := len(content)
	if length == 0 {
		return score
	}

	if n := strings.Count(content, `\u0`); n > 0 {
		score.Unicode = round2(float64(n) / (float64(length) / 2) * 100)
	}
	if n := len(hexEscapePattern.FindAllStringIndex(content, -1)); n > 0 {
		score.Hex = round2(float64(n) / (float64(length) / 4) * 100)
	}
	if n := strings.Count(content, "%"); n > 0 {
		score.Percent = round2(float64(n) / float64(length) * 100)
	}
	if strings.Contains(content, packerSignature) {
		score.Packer = packerScore
	}
	return score
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
