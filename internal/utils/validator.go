package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	Validate *validator.Validate

	phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

func InitValidator() {
	Validate = validator.New()
	_ = Validate.RegisterValidation("notblank", validators.NotBlank)
	_ = Validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
}
