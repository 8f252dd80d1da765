// Package domain decodes and validates 14-digit Egyptian national identity codes.
//
// The code layout is fixed-width:
//
//	C YY MM DD GG SSSS K
//
// where C is the century digit, YYMMDD the birth date, GG the governorate of birth registration,
// SSSS a serial number whose last digit encodes gender and K a mod-11 check digit.
package domain

// codeLength is the number of characters of a well-formed identity code.
const codeLength = 14

// Field offsets on the normalized code.
const (
	centuryOffset     = 0
	yearOffset        = 1
	monthOffset       = 3
	dayOffset         = 5
	governorateOffset = 7
	serialOffset      = 9
	checkOffset       = 13
)

// MaskPlaceholder replaces an identity code in audit payloads when the request body could not be read.
const MaskPlaceholder = "****"

// maskVisibleChars is the number of leading characters kept by MaskIdentityCode.
const maskVisibleChars = 8
