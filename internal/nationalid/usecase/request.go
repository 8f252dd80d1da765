package usecase

import (
	"bytes"
	"encoding/json"
	"errors"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/nationalid/internal/validation"
)

// Input is everything the orchestrator needs from the transport.
type Input struct {
	APIKey    string
	ClientIP  string
	UserAgent string
	Endpoint  string
	Method    string
	Body      []byte
}

// Request is the decoded body of a validation call.
type Request struct {
	NationalID     string `json:"national_id"`
	StrictChecksum bool   `json:"strict_checksum"`
}

// Validate checks the request schema.
func (r *Request) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.NationalID,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// DecodeRequest decodes body into a Request and validates it. An empty body is treated as an
// empty object. Numeric national_id values are accepted by their literal text. Failures are
// returned as validation.Errors keyed by field name.
func DecodeRequest(body []byte) (*Request, error) {
	raw := map[string]json.RawMessage{}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, validation.Errors{
				"body": validation.NewError("validation_json_object", "must be a JSON object"),
			}
		}
	}

	req := &Request{}
	errs := validation.Errors{}

	if value, ok := raw["national_id"]; ok {
		if err := decodeNationalID(value, &req.NationalID); err != nil {
			errs["national_id"] = err
		}
	}

	if value, ok := raw["strict_checksum"]; ok {
		if err := json.Unmarshal(value, &req.StrictChecksum); err != nil || isNull(value) {
			errs["strict_checksum"] = validation.NewError("validation_boolean", "must be a boolean")
		}
	}

	if err := req.Validate(); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for name, fieldErr := range fieldErrs {
			if _, exists := errs[name]; !exists {
				errs[name] = fieldErr
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}

func decodeNationalID(value json.RawMessage, dst *string) error {
	if isNull(value) {
		return validation.NewError("validation_not_null", "may not be null")
	}
	if err := json.Unmarshal(value, dst); err == nil {
		return nil
	}

	var number json.Number
	decoder := json.NewDecoder(bytes.NewReader(value))
	decoder.UseNumber()
	if err := decoder.Decode(&number); err == nil {
		*dst = number.String()
		return nil
	}

	return validation.NewError("validation_string", "must be a string")
}

func isNull(value json.RawMessage) bool {
	return string(bytes.TrimSpace(value)) == "null"
}

// strictChecksumForLog returns the strict_checksum value as sent, or false when absent or unreadable.
func strictChecksumForLog(body []byte) any {
	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}
	if value, ok := raw["strict_checksum"]; ok && value != nil {
		return value
	}
	return false
}
