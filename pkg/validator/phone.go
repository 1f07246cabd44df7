package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits, spaces, dashes, dots, parentheses and a leading +")

	// ErrInvalidLength indicates phone number has too few or too many digits
	ErrInvalidLength = errors.New("phone number must have between 7 and 15 digits")
)

const (
	minDigits = 7
	maxDigits = 15 // E.164 limit
)

// phoneRegex matches an optional leading + followed by digits only
var phoneRegex = regexp.MustCompile(`^\+?\d+$`)

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// PhoneValidator validates homestay contact phone numbers. Numbers are
// international: a leading + is kept, local numbers are accepted as typed.
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate checks phone and returns it without separators.
// Accepts "+84 90 123 4567", "(090) 123-4567", "0901234567".
func (v *PhoneValidator) Validate(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)
	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	digits := len(strings.TrimPrefix(sanitized, "+"))
	if digits < minDigits || digits > maxDigits {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize removes common separators. A "00" international prefix becomes "+".
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = separators.Replace(strings.TrimSpace(phone))
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	return phone
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
