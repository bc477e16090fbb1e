package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
)

var (
	statusTag  = "attendance_status"
	statusText = "invalid attendance status"

	StudentNotFoundText = "selected student does not exist"
	NotAnArrayText      = "attendance data must be an array"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// statusValidation checks that the field holds one of Statuses.
func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}
