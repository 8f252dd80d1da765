package usecase

import (
	"net/http"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/nationalid/internal/nationalid/domain"
)

// Outcome classifies a result for metrics.
type Outcome string

const (
	OutcomeValid        Outcome = "valid"
	OutcomeInvalid      Outcome = "invalid"
	OutcomeBadRequest   Outcome = "bad_request"
	OutcomeUnauthorized Outcome = "unauthorized"
	OutcomeThrottled    Outcome = "throttled"
	OutcomeError        Outcome = "error"
)

// Error tokens used outside the parser vocabulary.
const (
	ErrorThrottled         = "Request was throttled"
	ErrorInternal          = "internal_error"
	ErrorInternalResponse  = "internal_validation_error"
	invalidRequestTemplate = "Invalid request: "
)

// ParsedResponse is the public form of domain.ParsedIdentity.
type ParsedResponse struct {
	Raw             string `json:"raw"`
	CenturyDigit    string `json:"century_digit"`
	BirthDate       string `json:"birth_date"`
	Age             int    `json:"age"`
	GovernorateCode string `json:"governorate_code"`
	GovernorateName string `json:"governorate_name"`
	Serial          string `json:"serial"`
	Gender          string `json:"gender"`
	ChecksumOK      bool   `json:"checksum_ok"`
}

// Validate checks the parsed block is well formed.
func (p ParsedResponse) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Raw, validation.Required, validation.Length(14, 14)),
		validation.Field(&p.CenturyDigit, validation.Required, validation.In("2", "3")),
		validation.Field(&p.BirthDate, validation.Required, validation.Date(domain.DateLayout)),
		validation.Field(&p.Age, validation.Min(0)),
		validation.Field(&p.GovernorateCode, validation.Required, validation.Length(2, 2)),
		validation.Field(&p.GovernorateName, validation.Required),
		validation.Field(&p.Serial, validation.Required, validation.Length(4, 4)),
		validation.Field(&p.Gender, validation.Required, validation.In(string(domain.Male), string(domain.Female))),
	)
}

// Response is the body of every validation reply.
type Response struct {
	Valid  bool            `json:"valid"`
	Errors []string        `json:"errors"`
	Parsed *ParsedResponse `json:"parsed"`
}

// Validate checks the response contract: a valid response carries a parsed block and no
// errors, an invalid one carries errors and no parsed block.
func (r *Response) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Errors,
			validation.When(r.Valid, validation.Empty).Else(validation.Required),
			validation.Each(validation.Required),
		),
		validation.Field(&r.Parsed,
			validation.When(r.Valid, validation.NotNil).Else(validation.Nil),
		),
	)
}

// payload returns the response as an audit payload.
func (r *Response) payload() map[string]any {
	errs := make([]any, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e)
	}

	var parsed any
	if r.Parsed != nil {
		parsed = map[string]any{
			"raw":              r.Parsed.Raw,
			"century_digit":    r.Parsed.CenturyDigit,
			"birth_date":       r.Parsed.BirthDate,
			"age":              r.Parsed.Age,
			"governorate_code": r.Parsed.GovernorateCode,
			"governorate_name": r.Parsed.GovernorateName,
			"serial":           r.Parsed.Serial,
			"gender":           r.Parsed.Gender,
			"checksum_ok":      r.Parsed.ChecksumOK,
		}
	}

	return map[string]any{
		"valid":  r.Valid,
		"errors": errs,
		"parsed": parsed,
	}
}

// Result is the outcome of a validation request.
type Result struct {
	StatusCode int
	Outcome    Outcome
	Body       *Response
	APIKeyID   *uuid.UUID
}

func errorResult(statusCode int, outcome Outcome, errs ...string) *Result {
	return &Result{
		StatusCode: statusCode,
		Outcome:    outcome,
		Body:       &Response{Valid: false, Errors: errs},
	}
}

// responseFromParse maps a parser result onto the public response.
func responseFromParse(result domain.Result) (*Response, int, Outcome) {
	errs := make([]string, 0, len(result.Errors))
	for _, kind := range result.Errors {
		errs = append(errs, kind.String())
	}

	if !result.Valid || result.Parsed == nil {
		return &Response{Valid: false, Errors: errs}, http.StatusBadRequest, OutcomeInvalid
	}

	parsed := result.Parsed
	return &Response{
		Valid:  true,
		Errors: errs,
		Parsed: &ParsedResponse{
			Raw:             parsed.Raw,
			CenturyDigit:    parsed.CenturyDigit,
			BirthDate:       parsed.BirthDate.Format(domain.DateLayout),
			Age:             parsed.Age,
			GovernorateCode: parsed.GovernorateCode,
			GovernorateName: parsed.GovernorateName,
			Serial:          parsed.Serial,
			Gender:          string(parsed.Gender),
			ChecksumOK:      parsed.ChecksumOK,
		},
	}, http.StatusOK, OutcomeValid
}
