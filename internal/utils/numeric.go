package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"homebuyer-lead-engine/internal/models"
)

var numericStripper = strings.NewReplacer("$", "", ",", "", "%", "", " ", "", "\t", "", "\n", "", "\u00a0", "")

// ParseNumeric converts raw form input into a number. Currency symbols,
// thousands separators, percent signs and whitespace are ignored. ok is false
// for empty or non-numeric input, NaN and infinities.
func ParseNumeric(input any) (float64, bool) {
	var v float64
	switch x := input.(type) {
	case nil:
		return 0, false
	case string:
		return parseNumericString(x)
	case models.RawNumber:
		return parseNumericString(string(x))
	case json.Number:
		return parseNumericString(x.String())
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int32:
		v = float64(x)
	case int64:
		v = float64(x)
	case uint:
		v = float64(x)
	case uint32:
		v = float64(x)
	case uint64:
		v = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseNumericString(s string) (float64, bool) {
	cleaned := numericStripper.Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParsePositive parses a mandatory value that must be greater than zero.
func ParsePositive(input any, field string) (float64, error) {
	v, ok := ParseNumeric(input)
	if !ok {
		return 0, unparsed(input, field)
	}
	if v <= 0 {
		return 0, models.NewFieldError(field, models.CodeMustBePositive)
	}
	return v, nil
}

// ParseNonNegative parses a value that may not be negative. Empty input is
// reported as not provided rather than zero unless the field is required.
func ParseNonNegative(input any, field string, required bool) (value float64, provided bool, err error) {
	v, ok := ParseNumeric(input)
	if !ok {
		if required || !isBlank(input) {
			return 0, false, unparsed(input, field)
		}
		return 0, false, nil
	}
	if v < 0 {
		return 0, true, models.NewFieldError(field, models.CodeCannotBeNegative)
	}
	return v, true, nil
}

// ParsePercent parses an optional percentage in [0, 100].
func ParsePercent(input any, field string) (value float64, provided bool, err error) {
	v, provided, err := ParseNonNegative(input, field, false)
	if err != nil || !provided {
		return v, provided, err
	}
	if v > 100 {
		return 0, true, models.NewFieldError(field, models.CodeOutOfRange)
	}
	return v, true, nil
}

// SanitizeString trims input and truncates it to maxLength runes. ok is
// false when nothing is left after trimming.
func SanitizeString(input string, maxLength int) (string, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", false
	}
	if maxLength > 0 && utf8.RuneCountInString(s) > maxLength {
		s = strings.TrimSpace(string([]rune(s)[:maxLength]))
	}
	return s, true
}

// unparsed reports blank input as missing and anything else as invalid.
func unparsed(input any, field string) error {
	if isBlank(input) {
		return models.NewFieldError(field, models.CodeRequired)
	}
	return models.NewFieldError(field, models.CodeInvalid)
}

// isBlank reports whether input carries no characters at all, as opposed to
// characters that fail to parse.
func isBlank(input any) bool {
	switch x := input.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case models.RawNumber:
		return x.IsEmpty()
	case json.Number:
		return strings.TrimSpace(x.String()) == ""
	}
	return false
}
