package ticket

import (
	"strings"
	"unicode/utf8"
)

const (
	MinMerchantNameLength = 2
	MinDescriptionLength  = 10
)

// ValidationError reports the first rule a draft breaks. Message is shown to
// the user verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Code lets handler summaries tag validation failures.
func (e *ValidationError) Code() string { return "validation_" + e.Field }

// Validate checks the merchant name and then the description; the first
// failure wins. Lengths count characters after trimming surrounding spaces.
func Validate(d Draft) error {
	if utf8.RuneCountInString(strings.TrimSpace(d.MerchantName)) < MinMerchantNameLength {
		return &ValidationError{
			Field:   "merchant",
			Message: "Merchant name must be at least 2 characters long",
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.Description)) < MinDescriptionLength {
		return &ValidationError{
			Field:   "description",
			Message: "Problem description must be at least 10 characters long",
		}
	}
	return nil
}
