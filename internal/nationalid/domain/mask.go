package domain

// MaskIdentityCode keeps the first eight characters of code and replaces the rest with "****".
func MaskIdentityCode(code string) string {
	runes := []rune(code)
	if len(runes) > maskVisibleChars {
		runes = runes[:maskVisibleChars]
	}
	return string(runes) + MaskPlaceholder
}
