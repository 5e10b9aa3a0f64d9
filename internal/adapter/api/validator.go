package api

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate returns validator.ValidationErrors untouched so response.Error can
// render them as VALIDATION_ERROR.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
