package util

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// noteTagRule rejects tags that would not survive a round trip through a
// comma separated tag list.
func noteTagRule(fl validator.FieldLevel) bool {
	tag := strings.TrimSpace(fl.Field().String())
	return tag != "" && !strings.Contains(tag, ",")
}

// NewValidator returns a validator with the note rules registered:
//   - notetag: non-blank, no commas
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterNoteValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterNoteValidators registers the note tags with v. Registering twice
// is not an error.
func RegisterNoteValidators(v *validator.Validate) error {
	err := v.RegisterValidation("notetag", noteTagRule)
	if err != nil && err.Error() == "validator: tag 'notetag' already exists" {
		return nil
	}
	return err
}
