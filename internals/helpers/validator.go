package helper

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct runs validator.v10 over a request DTO.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}
