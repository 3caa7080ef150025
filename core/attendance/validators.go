package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kelasi/core"
)

var (
	statusTag  = "attstatus"
	statusText = "status must be one of: present, absent, late"
)

// InitValidators registers the attendance domain's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func statusValidation(fl validator.FieldLevel) bool {
	return IsValidStatus(fl.Field().String())
}

func IsValidStatus(status string) bool {
	for _, s := range Statuses {
		if status == s {
			return true
		}
	}
	return false
}
