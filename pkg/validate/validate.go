// Package validate holds the shared single-purpose predicates entity factories
// and mutators compose through outcome.Combine. Inputs are judged after
// trimming, so whitespace-only and empty are the same violation, and every
// message echoes the exact bound that gated the check.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	dErrors "discussly/pkg/domain-errors"
	"discussly/pkg/outcome"
)

// NotBlank rejects empty or whitespace-only values.
func NotBlank(field, value string) outcome.Outcome {
	if strings.TrimSpace(value) == "" {
		return outcome.Failuref(dErrors.KindValidation, "%s cannot be empty or contain only spaces", field)
	}
	return outcome.Success()
}

// MinLen enforces a lower length bound on the trimmed value. Bounds count
// characters, not bytes, so multibyte text is measured as users see it.
func MinLen(field, value string, min int) outcome.Outcome {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		return outcome.Failuref(dErrors.KindValidation, "%s must be at least %d characters", field, min)
	}
	return outcome.Success()
}

// MaxLen enforces an upper length bound on the trimmed value, counted in
// characters.
func MaxLen(field, value string, max int) outcome.Outcome {
	if utf8.RuneCountInString(strings.TrimSpace(value)) > max {
		return outcome.Failuref(dErrors.KindValidation, "%s must not exceed %d characters", field, max)
	}
	return outcome.Success()
}

// LengthBetween is NotBlank + MinLen + MaxLen for required bounded fields.
func LengthBetween(field, value string, min, max int) outcome.Outcome {
	return NotBlank(field, value).
		Combine(MinLen(field, value, min)).
		Combine(MaxLen(field, value, max))
}

// Range enforces inclusive numeric bounds.
func Range(field string, value, min, max int64) outcome.Outcome {
	if value < min || value > max {
		return outcome.Failuref(dErrors.KindValidation, "%s must be between %d and %d", field, min, max)
	}
	return outcome.Success()
}

// NonNegative rejects values below zero.
func NonNegative(field string, value int) outcome.Outcome {
	if value < 0 {
		return outcome.Failuref(dErrors.KindValidation, "%s cannot be negative", field)
	}
	return outcome.Success()
}

// AbsoluteHTTPURL requires an absolute URL with an http or https scheme.
func AbsoluteHTTPURL(field, value string) outcome.Outcome {
	u, err := url.Parse(strings.TrimSpace(value))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return outcome.Failure(dErrors.KindValidation, fmt.Sprintf("invalid %s format", field))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return outcome.Failuref(dErrors.KindValidation, "%s must use HTTP or HTTPS protocol", field)
	}
	return outcome.Success()
}
