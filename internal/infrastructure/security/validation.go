// Package security provides input validation and sanitization for API requests
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	apperrors "github.com/alchemorsel/recipefinder/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// MaxQueryLength is the longest query accepted, in runes. Request structs
// repeat it in their max= tag.
const MaxQueryLength = 1000

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	scriptPattern     = regexp.MustCompile(`(?i)(<\s*script\b|javascript:|\bon[a-z]+\s*=)`)
)

// ValidationService provides input validation and sanitization
type ValidationService struct {
	logger    *zap.Logger
	validator *validator.Validate
}

// NewValidationService creates a new validation service
func NewValidationService(logger *zap.Logger) *ValidationService {
	validate := validator.New(validator.WithRequiredStructEnabled())

	mustRegister(validate, "query_text", validateQueryText)
	mustRegister(validate, "no_script", validateNoScript)

	return &ValidationService{
		logger:    logger.Named("validation"),
		validator: validate,
	}
}

// mustRegister panics on a bad tag, like regexp.MustCompile on a bad pattern
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("security: register %q validation: %v", tag, err))
	}
}

// SanitizeQuery trims the query, drops control characters and collapses
// whitespace. Length is left to the validator so over-long queries are
// rejected rather than cut.
func (v *ValidationService) SanitizeQuery(input string) string {
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(result, " "))
}

// ValidateStruct validates a struct and converts failures into a
// VALIDATION_FAILED application error.
func (v *ValidationService) ValidateStruct(s interface{}) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperrors.NewBadRequestError("Invalid request")
	}

	fields := make([]apperrors.ValidationError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, apperrors.ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	v.logger.Debug("Request failed validation", zap.Int("violations", len(fields)))
	return apperrors.NewValidationErrors(fields)
}

// HasTag reports whether err is a validation failure on the given tag
func HasTag(err error, field, tag string) bool {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	fields, ok := appErr.Metadata["validation_errors"].(apperrors.ValidationErrors)
	if !ok {
		return false
	}
	for _, f := range fields {
		if f.Field == field && f.Tag == tag {
			return true
		}
	}
	return false
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "query_text":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "no_script":
		return fmt.Sprintf("%s contains script content", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// validateQueryText rejects blank text
func validateQueryText(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validateNoScript rejects script tags, javascript: URLs and inline handlers
func validateNoScript(fl validator.FieldLevel) bool {
	return !scriptPattern.MatchString(fl.Field().String())
}
