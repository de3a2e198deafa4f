// SPDX-License-Identifier: MIT

// Package strutil holds small string helpers shared by commands and config.
package strutil

import "strings"

// SplitCSV splits a comma-separated flag value, trimming blanks and dropping
// empty items.
func SplitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// EqualFold reports whether s matches any of candidates, ignoring case.
func EqualFold(s string, candidates ...string) bool {
	for _, c := range candidates {
		if strings.EqualFold(s, c) {
			return true
		}
	}
	return false
}
