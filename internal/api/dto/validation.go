package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	apperrors "github.com/spec-kit/customer-service/pkg/util/errorutil"
)

// FieldViolation describes one failed input rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(customerRequestStructLevel, CustomerRequest{})
	return v
}

// customerRequestStructLevel checks the spend sign on the decimal itself.
// The float64 seen by field tags rounds tiny negatives to -0.
func customerRequestStructLevel(sl validator.StructLevel) {
	req := sl.Current().Interface().(CustomerRequest)
	if req.AnnualSpend != nil && req.AnnualSpend.IsNegative() {
		sl.ReportError(req.AnnualSpend, "annualSpend", "AnnualSpend", "gte", "0")
	}
}

// Validate checks req against its validate tags and returns a
// VALIDATION_FAILED error listing every violation.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	violations := make([]FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, FieldViolation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return apperrors.NewValidationError("validation failed", map[string]any{"violations": violations})
}

var fieldLabels = map[string]string{
	"name":        "Name",
	"email":       "Email",
	"annualSpend": "Annual spend",
}

func violationMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required", "notblank":
		return label + " is required"
	case "max":
		return label + " cannot exceed " + fe.Param() + " characters"
	case "email":
		return label + " should be valid"
	case "gte":
		return label + " cannot be negative"
	}
	return label + " is invalid"
}
