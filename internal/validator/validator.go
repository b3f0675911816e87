package validator

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// ValidDNI reports whether a raw dni (e.g. a path parameter) has the required
// length. National ids are validated by length only, no checksum.
func (v *Validator) ValidDNI(dni string) bool {
	return len(dni) == 8
}
