package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator instancia única con los validadores del ledger. Los decimal.Decimal se validan
// sobre su representación en string.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			if d, ok := v.Interface().(decimal.Decimal); ok {
				return d.String()
			}
			return nil
		}, decimal.Decimal{})

		_ = validate.RegisterValidation("movement_type", validateMovementType)
		_ = validate.RegisterValidation("nonzero_decimal", decimalCheck(func(d decimal.Decimal) bool { return !d.IsZero() }))
		_ = validate.RegisterValidation("positive_decimal", decimalCheck(decimal.Decimal.IsPositive))
		_ = validate.RegisterValidation("nonnegative_decimal", decimalCheck(func(d decimal.Decimal) bool { return !d.IsNegative() }))

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func validateMovementType(fl validator.FieldLevel) bool {
	return entity.MovementType(fl.Field().String()).IsValid()
}

func decimalCheck(ok func(decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && ok(d)
	}
}

// validationDetails convierte los errores del validador en mensajes por campo.
func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, formatValidationError(e))
	}
	return out
}

func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	field = strings.TrimPrefix(field, "StockOperationRequest.")
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s elements", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "movement_type":
		return fmt.Sprintf("%s must be one of sale, purchase, adjustment, transfer, waste, return", field)
	case "nonzero_decimal":
		return fmt.Sprintf("%s must be a non-zero decimal", field)
	case "positive_decimal":
		return fmt.Sprintf("%s must be a positive decimal", field)
	case "nonnegative_decimal":
		return fmt.Sprintf("%s cannot be negative", field)
	default:
		return fmt.Sprintf("%s failed on %s", field, e.Tag())
	}
}
