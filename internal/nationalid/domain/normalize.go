package domain

import "strings"

// Eastern Arabic-Indic digit block (U+0660 to U+0669).
const (
	arabicIndicZero = '٠'
	arabicIndicNine = '٩'
)

// Normalize maps Eastern Arabic-Indic digits to their ASCII equivalents and leaves every other
// rune untouched. Normalizing an ASCII string returns it unchanged.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= arabicIndicZero && r <= arabicIndicNine {
			return '0' + (r - arabicIndicZero)
		}
		return r
	}, s)
}

// isASCIIDigits reports whether s is exactly n ASCII digits.
func isASCIIDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// digitsToInt converts a run of ASCII digits to an int. Callers guarantee digits only.
func digitsToInt(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
