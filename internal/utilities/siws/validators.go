package siws

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const minNonceLength = 8

var (
	domainPattern    = regexp.MustCompile(`^[^/?#]+$`)
	statementPattern = regexp.MustCompile(`^[^\n]+$`)
)

// fieldValidator is built on first use and then only read.
var fieldValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		return name
	})
	return v
})

// ValidateDomain checks that the domain has no path, query or fragment
// delimiters.
func ValidateDomain(domain string) (string, error) {
	if !domainPattern.MatchString(domain) {
		return "", errInvalidField(FieldDomain, "must be non-empty and must not contain '/', '?' or '#'", domain)
	}
	return domain, nil
}

// ValidateStatement checks that the statement is a single non-empty line.
func ValidateStatement(statement string) (string, error) {
	if !statementPattern.MatchString(statement) {
		return "", errInvalidField(FieldStatement, "must be a single non-empty line", statement)
	}
	return statement, nil
}

// ValidateNonce checks the minimum nonce length.
func ValidateNonce(nonce string) (string, error) {
	if utf8.RuneCountInString(nonce) < minNonceLength {
		return "", errInvalidField(FieldNonce, "must be at least 8 characters", nonce)
	}
	return nonce, nil
}

// ValidateURI checks that value is an absolute URI. The value is never
// rewritten.
func ValidateURI(field, value string) (string, error) {
	if err := fieldValidator().Var(value, "url"); err != nil {
		return "", errMalformedURI(field, value)
	}
	return value, nil
}

// ValidateResources checks that the list is non-empty and that every entry
// is a valid URI.
func ValidateResources(resources []string) ([]string, error) {
	if len(resources) < 1 {
		return nil, errInvalidField(FieldResources, "must contain at least one URI", "")
	}

	for i, resource := range resources {
		if _, err := ValidateURI(resourceField(i), resource); err != nil {
			return nil, err
		}
	}

	return resources, nil
}
