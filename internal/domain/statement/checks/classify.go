// Package checks turns the text of a bank statement into check records.
//
// The text is split on whitespace and scanned with an overlapping window of
// three tokens. A window whose tokens look like a check number, a month/day
// pair and an unsigned amount becomes one CheckRecord. Nothing in this package
// performs I/O, so every function is safe for concurrent use.
package checks

import (
	"regexp"
	"strings"
)

var (
	checkNumberPattern  = regexp.MustCompile(`^\d{3,4}$`)
	dateFragmentPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	amountPattern       = regexp.MustCompile(`^[\d,]+\.\d{2}$`)
)

// IsCheckNumber reports whether tok is a 3 or 4 digit check number.
func IsCheckNumber(tok string) bool {
	return checkNumberPattern.MatchString(tok)
}

// IsDateFragment reports whether tok is a zero-padded "MM/DD" pair.
// The fields are not range checked; "13/45" matches.
func IsDateFragment(tok string) bool {
	return dateFragmentPattern.MatchString(tok)
}

// IsAmount reports whether tok is an unsigned amount with optional thousands
// commas and exactly two fractional digits.
func IsAmount(tok string) bool {
	return amountPattern.MatchString(tok)
}

// JoinPages concatenates page texts in order, each followed by a newline.
// A page with no extractable text contributes only its newline.
func JoinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}

// Tokenize splits text on runs of whitespace, dropping empty tokens.
func Tokenize(text string) []string {
	return strings.Fields(text)
}
