package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/allisson/nationalid/internal/nationalid/domain"
)

// IdentityParser parses an identity code.
type IdentityParser interface {
	Parse(raw string, strict bool) domain.Result
}

// RunValidateID parses a single identity code locally, without authentication, quotas or
// auditing. It returns an error when the code is invalid so scripts can rely on the exit status.
func RunValidateID(parser IdentityParser, writer io.Writer, nationalID string, strict bool, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	result := parser.Parse(nationalID, strict)

	errs := make([]string, 0, len(result.Errors))
	for _, kind := range result.Errors {
		errs = append(errs, kind.String())
	}

	if format == "json" {
		payload := map[string]any{
			"valid":  result.Valid,
			"errors": errs,
			"parsed": nil,
		}
		if result.Parsed != nil {
			payload["parsed"] = parsedPayload(result.Parsed)
		}
		if err := writeJSON(writer, payload); err != nil {
			return err
		}
	} else if result.Valid && result.Parsed != nil {
		p := result.Parsed
		_, _ = fmt.Fprintln(writer, "Valid: true")
		_, _ = fmt.Fprintf(writer, "Birth date: %s (age %d)\n", p.BirthDate.Format(domain.DateLayout), p.Age)
		_, _ = fmt.Fprintf(writer, "Governorate: %s (%s)\n", p.GovernorateName, p.GovernorateCode)
		_, _ = fmt.Fprintf(writer, "Gender: %s\n", p.Gender)
		_, _ = fmt.Fprintf(writer, "Checksum OK: %t\n", p.ChecksumOK)
	} else {
		_, _ = fmt.Fprintln(writer, "Valid: false")
		_, _ = fmt.Fprintf(writer, "Errors: %s\n", strings.Join(errs, ", "))
	}

	if !result.Valid {
		return fmt.Errorf("invalid national id: %s", strings.Join(errs, ", "))
	}
	return nil
}

func parsedPayload(p *domain.ParsedIdentity) map[string]any {
	return map[string]any{
		"raw":              p.Raw,
		"century_digit":    p.CenturyDigit,
		"birth_date":       p.BirthDate.Format(domain.DateLayout),
		"age":              p.Age,
		"governorate_code": p.GovernorateCode,
		"governorate_name": p.GovernorateName,
		"serial":           p.Serial,
		"gender":           string(p.Gender),
		"checksum_ok":      p.ChecksumOK,
	}
}
