package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	RegisterValidations(v)
	return v
}

// RegisterValidations installs the API field naming, decimal support and
// the custom tags on v. gin's binding engine is configured with it too.
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	v.RegisterAlias("participants", "min=0")
}

// FieldErrors converts validator failures into field errors.
func FieldErrors(errs validator.ValidationErrors) ValidationErrors {
	var ve ValidationErrors
	_ = collect(&ve, errs, "")
	return ve
}

func describe(field, tag, param string) (code, message string) {
	switch tag {
	case "required", "required_without":
		return CodeRequired, "This field is required."
	case "notblank":
		return CodeBlank, fmt.Sprintf("%s cannot be empty", capitalize(field))
	case "email":
		return CodeInvalid, "Enter a valid email address."
	case "slug":
		return CodeInvalid, "Enter a valid slug consisting of lowercase letters, numbers, underscores or hyphens."
	case "participants":
		return CodeNegativeParticipants, fmt.Sprintf("%s count cannot be negative", capitalize(field))
	case "min", "gte":
		return CodeInvalid, fmt.Sprintf("Ensure this value is greater than or equal to %s.", param)
	case "max", "lte":
		return CodeInvalid, fmt.Sprintf("Ensure this value is less than or equal to %s.", param)
	default:
		return CodeInvalid, fmt.Sprintf("Failed the %q check.", tag)
	}
}

// checkSlug rejects slugs that could not be derived from a name or that
// would not round-trip through a URL path.
func checkSlug(slug string) error {
	var ve ValidationErrors
	if slug == "" {
		ve.Add("slug", CodeRequired, "A slug could not be generated from the name. Provide one explicitly.")
		return ve
	}
	if err := checkVar(&ve, "slug", slug, "slug"); err != nil {
		return err
	}
	return ve.Err()
}

// checkFields validates in and returns its failures as ValidationErrors.
func checkFields(in any) error {
	var ve ValidationErrors
	if err := checkStruct(&ve, in); err != nil {
		return err
	}
	return ve.Err()
}

func checkEmail(email string) error {
	var ve ValidationErrors
	if err := checkVar(&ve, "email", email, "required,email"); err != nil {
		return err
	}
	return ve.Err()
}

// checkStruct runs the validate tags of in and appends every failure to ve.
func checkStruct(ve *ValidationErrors, in any) error {
	return collect(ve, validate.Struct(in), "")
}

// checkVar validates a single value reported under field.
func checkVar(ve *ValidationErrors, field string, value any, tag string) error {
	return collect(ve, validate.Var(value, tag), field)
}

func collect(ve *ValidationErrors, err error, field string) error {
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	for _, fe := range errs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		code, msg := describe(name, fe.Tag(), fe.Param())
		ve.Add(name, code, msg)
	}
	return nil
}
