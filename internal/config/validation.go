package config

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	serviceIDPattern = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)
)

// Validator returns the shared validator with the stackctl tags registered.
// The definition loader uses the same instance.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(tagName)
		_ = v.RegisterValidation("service_id", func(fl validator.FieldLevel) bool {
			return IsValidServiceID(fl.Field().String())
		})
		validateInst = v
	})
	return validateInst
}

// tagName reports fields by their document key so errors read like the
// YAML the user wrote.
func tagName(field reflect.StructField) string {
	for _, key := range []string{"yaml", "json"} {
		name := strings.SplitN(field.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// IsValidServiceID reports whether id is a DNS-1123 label.
func IsValidServiceID(id string) bool {
	return len(id) <= 63 && serviceIDPattern.MatchString(id)
}

// Validate checks the whole configuration and returns every problem found
// as ValidationErrors, or nil.
func Validate(cfg Config) error {
	var errs ValidationErrors
	if err := Validator().Struct(cfg); err != nil {
		errs = append(errs, ConvertValidatorErrors(err)...)
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidateService checks a single service entry.
func ValidateService(id string, svc ServiceConfig) error {
	var errs ValidationErrors
	if !IsValidServiceID(id) {
		errs.Add("services", "service id must be a lowercase DNS label", id)
	}
	if err := Validator().Struct(svc); err != nil {
		for _, ve := range ConvertValidatorErrors(err) {
			ve.Field = "services." + id + "." + ve.Field
			errs = append(errs, ve)
		}
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ConvertValidatorErrors normalizes validator errors into ValidationErrors
// with lower-cased dotted field names.
func ConvertValidatorErrors(err error) ValidationErrors {
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{
			Field:   fieldName(fe),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "service_id":
		return "must be a lowercase DNS label"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	}
	return fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
}

func fieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	// drop the root struct name
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}

var (
	devSuffixes = []string{".local", ".localdomain", ".test", ".example", ".invalid"}
	devPrefixes = map[string]bool{"local": true, "dev": true, "test": true, "staging": true, "sandbox": true}

	// CertificateCredentialVars must be set to request publicly trusted
	// certificates for a non-development domain.
	CertificateCredentialVars = []string{"CLOUDFLARE_EMAIL", "CLOUDFLARE_API_TOKEN"}
)

// IsDevDomain reports whether domain can be served with self-signed
// certificates.
func IsDevDomain(domain string) bool {
	if domain == "" || domain == "localhost" || domain == "127.0.0.1" {
		return true
	}
	for _, suffix := range devSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}
	first := strings.SplitN(domain, ".", 2)[0]
	return devPrefixes[first]
}

// MissingCredentialVars lists the certificate credential variables that are
// not set in the process environment.
func MissingCredentialVars() []string {
	var missing []string
	for _, name := range CertificateCredentialVars {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// CheckCredentials returns an error when the configured domain needs public
// certificates and the credential variables are missing. For development
// domains it never fails; the second return value lists what is missing so
// the caller can warn.
func CheckCredentials(cfg Config) ([]string, error) {
	missing := MissingCredentialVars()
	if len(missing) == 0 || IsDevDomain(cfg.Domain()) {
		return missing, nil
	}
	return missing, fmt.Errorf("domain '%s' requires publicly trusted certificates, but these environment variables are missing: %s",
		cfg.Domain(), strings.Join(missing, ", "))
}
