package common

import (
	"fmt"
	"slices"
	"time"

	"resumelens/internal/errors"
)

const asOfLayout = "2006-01-02"

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, supportedFormats), nil)
}

// GetSupportedFormats returns the list of supported formats
func GetSupportedFormats(supportedFormats []string) []string {
	return supportedFormats
}

// ParseAsOf turns an --as-of date in loc into a fixed clock. An empty value
// returns time.Now.
func ParseAsOf(value string, loc *time.Location) (func() time.Time, error) {
	if value == "" {
		return time.Now, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation(asOfLayout, value, loc)
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid --as-of date '%s' (want YYYY-MM-DD)", value), err)
	}
	fixed := date.Add(12 * time.Hour)
	return func() time.Time { return fixed }, nil
}
