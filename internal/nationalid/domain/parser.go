package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Gender is derived from the parity of the last serial digit.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// DateLayout is the layout used when a birth date is rendered as text.
const DateLayout = "2006-01-02"

// centuryBase maps the century digit to the first year of that century.
var centuryBase = map[byte]int{
	'2': 1900,
	'3': 2000,
}

// ParsedIdentity holds the fields decoded from a valid identity code.
type ParsedIdentity struct {
	Raw             string
	CenturyDigit    string
	BirthDate       time.Time
	Age             int
	GovernorateCode string
	GovernorateName string
	Serial          string
	Gender          Gender
	ChecksumOK      bool
}

// Result is the outcome of Parser.Parse. Parsed is nil whenever Errors is non-empty.
type Result struct {
	Valid  bool
	Errors []ErrorKind
	Parsed *ParsedIdentity
}

// Parser decodes identity codes. The clock decides what "today" means for age and
// future-date checks; its location is used to pick the calendar date.
type Parser struct {
	now func() time.Time
}

// NewParser creates a Parser. A nil clock falls back to time.Now.
func NewParser(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// NewParserInLocation creates a Parser whose calendar date is taken in loc.
func NewParserInLocation(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return NewParser(func() time.Time { return time.Now().In(loc) })
}

var defaultParser = NewParser(nil)

// Parse validates raw with the default wall clock parser.
func Parse(raw string, strict bool) Result {
	return defaultParser.Parse(raw, strict)
}

// Parse validates raw and decodes it. Structural failures (length, characters, century, date)
// stop at the first error. An unknown governorate and, in strict mode, a checksum mismatch
// are accumulated and reported together.
func (p *Parser) Parse(raw string, strict bool) Result {
	trimmed := strings.TrimSpace(raw)

	if utf8.RuneCountInString(trimmed) != codeLength {
		return invalid(InvalidLength)
	}

	code := Normalize(trimmed)
	if !isASCIIDigits(code, codeLength) {
		return invalid(InvalidCharacters)
	}

	base, ok := centuryBase[code[centuryOffset]]
	if !ok {
		return invalid(UnknownCentury)
	}

	year := base + digitsToInt(code[yearOffset:monthOffset])
	month := digitsToInt(code[monthOffset:dayOffset])
	day := digitsToInt(code[dayOffset:governorateOffset])

	if month < 1 || month > 12 {
		return invalid(InvalidMonth)
	}
	if day < 1 || day > 31 {
		return invalid(InvalidDay)
	}

	birthDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if birthDate.Day() != day || int(birthDate.Month()) != month {
		return invalid(InvalidDate)
	}

	today := p.today()
	if birthDate.After(today) {
		return invalid(FutureDate)
	}

	var errs []ErrorKind

	governorateCode := code[governorateOffset:serialOffset]
	governorateName, ok := LookupGovernorate(governorateCode)
	if !ok {
		errs = append(errs, UnknownGovernorate)
	}

	checksumOK := ValidChecksum(code)
	if strict && !checksumOK {
		errs = append(errs, InvalidChecksum)
	}

	if len(errs) > 0 {
		return Result{Valid: false, Errors: errs}
	}

	serial := code[serialOffset:checkOffset]
	gender := Female
	if (serial[len(serial)-1]-'0')%2 == 1 {
		gender = Male
	}

	return Result{
		Valid:  true,
		Errors: []ErrorKind{},
		Parsed: &ParsedIdentity{
			Raw:             code,
			CenturyDigit:    code[centuryOffset:yearOffset],
			BirthDate:       birthDate,
			Age:             ageOn(birthDate, today),
			GovernorateCode: governorateCode,
			GovernorateName: governorateName,
			Serial:          serial,
			Gender:          gender,
			ChecksumOK:      checksumOK,
		},
	}
}

// today returns the current calendar date at midnight UTC.
func (p *Parser) today() time.Time {
	y, m, d := p.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ageOn returns the number of full years between birth and today.
func ageOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

func invalid(kind ErrorKind) Result {
	return Result{Valid: false, Errors: []ErrorKind{kind}}
}
