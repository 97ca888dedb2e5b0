package customers

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"
)

// ValidationError reports a rejected customer attribute.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks a customer before it is created or updated. Updates must
// carry the customer id.
func Validate(c Customer, create bool) error {
	if !create && strings.TrimSpace(c.ID) == "" {
		return invalid("id", "customer id is required")
	}
	if err := validateName("firstName", c.FirstName); err != nil {
		return err
	}
	if err := validateName("lastName", c.LastName); err != nil {
		return err
	}
	if err := ValidateEmail(c.EmailAddress); err != nil {
		return err
	}
	if c.PhoneNumber == "" {
		// TODO: check the phone number format once a canonical format is agreed on.
		return invalid("phoneNumber", "phone number is required")
	}
	return nil
}

func validateName(field, name string) error {
	if name == "" {
		return invalid(field, "name is required")
	}
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return invalid(field, "name must not contain digits")
	}
	return nil
}

// ValidateEmail accepts a bare address whose domain ends in a public suffix
// managed by ICANN. Display names and single-label domains are rejected.
func ValidateEmail(email string) error {
	if email == "" {
		return invalid("emailAddress", "email address is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return invalid("emailAddress", "malformed email address")
	}

	at := strings.LastIndexByte(email, '@')
	domain := strings.ToLower(email[at+1:])
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return invalid("emailAddress", "email domain must be fully qualified")
	}
	suffix, icann := publicsuffix.PublicSuffix(domain)
	if !icann || suffix == domain {
		return invalid("emailAddress", "unknown email domain")
	}
	return nil
}
