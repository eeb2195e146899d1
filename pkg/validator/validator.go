package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"param,omitempty"`
}

var validate = validator.New()

// Enumerations checked by the custom tags below. Kept as strings so this
// package does not depend on the model layer.
var (
	movementTypes = []string{"in", "out", "adjustment", "damaged", "expired", "returned", "transfer"}
	roles         = []string{"admin", "manager", "employee"}
	alertTypes    = []string{"low_stock", "out_of_stock", "expiry_soon", "expired", "reorder_point"}
)

func init() {
	// Report json names ("product_id") instead of Go names ("ProductID").
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	validate.RegisterValidation("movement_type", oneOfString(movementTypes))
	validate.RegisterValidation("role", oneOfString(roles))
	validate.RegisterValidation("alert_type", oneOfString(alertTypes))
}

// oneOfString accepts any string-kinded field (including named string types).
func oneOfString(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.Field()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}
