// Package validation provides the domain validation error model and struct
// validation for configuration documents.
//
// Domain rules report tagged Error values (EmptyField, InvalidFormat,
// TooShort, TooLong). An entity can carry several; a Validator collects them
// and Err returns them as a single Errors value.
//
//	v := validation.New()
//	if name == "" {
//	    v.Add(validation.EmptyField("username"))
//	}
//	err := v.Err()
//
// Struct validation uses go-playground/validator tags:
//
//	type Output struct {
//	    Format string `mapstructure:"format" validate:"required,oneof=csv json sqlite"`
//	}
//	err := validation.ValidateStruct(out)
package validation
