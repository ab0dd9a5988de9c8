package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagStrongPassword is the struct tag bound to IsStrongPassword.
const TagStrongPassword = "strongpassword"

// New returns a validator with the project's custom tags registered and
// field names reported by their json tag.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(TagStrongPassword, func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return v
}

// FirstMessage turns a validator error into a short sentence suitable for
// clients. Unknown errors yield fallback.
func FirstMessage(err error, fallback string) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fallback
	}
	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "email must be a valid email address"
	case TagStrongPassword:
		return PasswordRequirements
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fallback
	}
}
