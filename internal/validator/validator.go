package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"learnhub_backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the platform's custom tags.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	v := validator.New()
	registerCustomValidators(v)
	return &Validator{structValidator: v}
}

// RegisterGinValidators adds the custom tags to gin's binding engine so
// request structs can use them in binding tags.
func RegisterGinValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomValidators(v)
	}
}

// Validate checks struct tags and flattens failures into one readable error.
func (v *Validator) Validate(s interface{}) error {
	err := v.structValidator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.SplitN(fe.Namespace(), ".", 2)
	name := fe.Namespace()
	if len(field) == 2 {
		name = field[1]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min", "max", "gte", "lte":
		return fmt.Sprintf("%s must satisfy %s=%s", name, fe.Tag(), fe.Param())
	case "one_correct":
		return fmt.Sprintf("%s must have exactly one correct answer", name)
	case "role":
		return fmt.Sprintf("%s is not a known role", name)
	default:
		return fmt.Sprintf("%s failed %s", name, fe.Tag())
	}
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("one_correct", validateOneCorrect)
	validate.RegisterValidation("role", validateRole)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateOneCorrect passes when exactly one element of a slice of structs
// has IsCorrect set.
func validateOneCorrect(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	correct := 0
	for i := 0; i < field.Len(); i++ {
		elem := reflect.Indirect(field.Index(i))
		if elem.Kind() != reflect.Struct {
			return false
		}
		flag := elem.FieldByName("IsCorrect")
		if !flag.IsValid() || flag.Kind() != reflect.Bool {
			return false
		}
		if flag.Bool() {
			correct++
		}
	}
	return correct == 1
}

func validateRole(fl validator.FieldLevel) bool {
	_, err := model.ParseRole(fl.Field().String())
	return err == nil
}
