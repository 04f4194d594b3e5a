package schema

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder tokens upstream editors leave in cells that have no real
// value yet. Treated the same as an empty cell everywhere.
var placeholderTokens = map[string]struct{}{
	"暂无":   {},
	"制作中":  {},
	"待定":   {},
	"未知":   {},
	"-":    {},
	"/":    {},
	"N/A":  {},
	"n/a":  {},
	"NA":   {},
	"na":   {},
	"null": {},
	"NULL": {},
	"None": {},
	"none": {},
	"无":    {},
}

var nonNumericPattern = regexp.MustCompile(`[^\d.\-]`)

// IsPlaceholder reports whether a trimmed cell value is one of the known
// "no value yet" tokens.
func IsPlaceholder(v string) bool {
	_, ok := placeholderTokens[strings.TrimSpace(v)]
	return ok
}

// defaultStringMax caps cleaned string fields. Over-long cells are
// truncated rather than failing the whole batch against the column sizes.
const defaultStringMax = 500

// CleanString trims a cell, collapses placeholder tokens to empty and caps
// the length at the default maximum.
func CleanString(v string) string {
	return CleanStringMax(v, defaultStringMax)
}

// CleanStringMax is CleanString with an explicit rune-length cap; max <= 0
// means no cap.
func CleanStringMax(v string, max int) string {
	v = strings.TrimSpace(v)
	if IsPlaceholder(v) {
		return ""
	}
	if max > 0 {
		if runes := []rune(v); len(runes) > max {
			v = string(runes[:max])
		}
	}
	return v
}

// CleanNumeric extracts a float from a dirty cell. Unit suffixes such as
// "分钟" or "集" are stripped; placeholders and residue with no digits report
// !ok rather than 0 so callers can tell "missing" from "zero".
func CleanNumeric(v string) (float64, bool) {
	v = strings.TrimSpace(v)
	if v == "" || IsPlaceholder(v) {
		return 0, false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f, true
	}
	stripped := nonNumericPattern.ReplaceAllString(v, "")
	if stripped == "" || stripped == "-" || stripped == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// CleanInt is CleanNumeric truncated to an int.
func CleanInt(v string) (int, bool) {
	f, ok := CleanNumeric(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
