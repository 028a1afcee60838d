package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/angelmondragon/chieftain/pkg/errors"
	"github.com/angelmondragon/chieftain/pkg/types"
)

// PhoneTag is the validator tag for storefront phone numbers.
const PhoneTag = "phone"

var phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)

var addressValidator = NewValidator()

// NewValidator returns a validator reporting json field names and knowing the
// phone rule.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	RegisterPhoneRule(v)
	return v
}

// RegisterPhoneRule installs the phone tag on v.
func RegisterPhoneRule(v *validator.Validate) {
	_ = v.RegisterValidation(PhoneTag, func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
}

// ValidPhone accepts an optional leading plus followed by at least ten digits,
// spaces, dashes or parentheses.
func ValidPhone(value string) bool {
	return phonePattern.MatchString(value)
}

// ValidateAddress checks a shipping address and returns a validation error
// whose details map each offending json field to a message.
func ValidateAddress(addr types.ShippingAddress) error {
	err := addressValidator.Struct(addr)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid shipping address").WithDetails(FieldErrors(fieldErrs))
}

// FieldErrors flattens validator errors into json field to message pairs.
func FieldErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = Message(fe)
	}
	return details
}

func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case PhoneTag:
		return "must be a valid phone number"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	}
	return "is invalid"
}
