package domain

// ErrorKind is a stable token describing why an identity code was rejected.
type ErrorKind string

// Error kinds reported by Parser.Parse, in pipeline order.
const (
	InvalidLength      ErrorKind = "invalid_length"
	InvalidCharacters  ErrorKind = "invalid_characters"
	UnknownCentury     ErrorKind = "unknown_century"
	InvalidMonth       ErrorKind = "invalid_month"
	InvalidDay         ErrorKind = "invalid_day"
	InvalidDate        ErrorKind = "invalid_date"
	FutureDate         ErrorKind = "future_date"
	UnknownGovernorate ErrorKind = "unknown_governorate"
	InvalidChecksum    ErrorKind = "invalid_checksum"
)

// String returns the token form of the error kind.
func (k ErrorKind) String() string {
	return string(k)
}
