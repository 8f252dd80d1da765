package domain

// checksumWeights are applied positionally to the first 13 digits.
var checksumWeights = [13]int{2, 7, 6, 5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ExpectedCheckDigit computes the check digit for a normalized 14-digit code.
// The 14th digit of code is ignored.
func ExpectedCheckDigit(code string) int {
	total := 0
	for i, weight := range checksumWeights {
		total += int(code[i]-'0') * weight
	}
	return (11 - total%11) % 10
}

// ValidChecksum reports whether the last digit of a normalized 14-digit code matches its
// expected check digit.
func ValidChecksum(code string) bool {
	return ExpectedCheckDigit(code) == int(code[checkOffset]-'0')
}
