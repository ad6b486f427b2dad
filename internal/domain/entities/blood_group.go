package entities

import (
	"strings"
	"unicode"
)

// BloodGroups is the accepted vocabulary, in display order.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// NormalizeBloodGroup repairs query-string damage ("A " for "A+"), trims and upper-cases.
// Spaces and pluses after the letters collapse into "+", or are dropped
// around a single "-", so "O- " and "A -" stay negative.
func NormalizeBloodGroup(raw string) string {
	s := strings.TrimLeft(raw, " \t\r\n+")
	s = strings.TrimRight(s, "\t\r\n")

	letters := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if letters < 0 {
		return strings.ToUpper(s)
	}
	rest := s[letters:]
	switch strings.Trim(rest, " +") {
	case "-":
		return strings.ToUpper(s[:letters]) + "-"
	case "":
		return strings.ToUpper(s[:letters]) + "+"
	}
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidBloodGroup reports whether g (already normalized) is in the vocabulary.
func ValidBloodGroup(g string) bool {
	for _, v := range BloodGroups {
		if v == g {
			return true
		}
	}
	return false
}
