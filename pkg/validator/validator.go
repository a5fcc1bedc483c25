package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-pipeline/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the domain enum rules
func New() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("export_format", func(fl validator.FieldLevel) bool {
		return entities.ExportFormat(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("action_status", func(fl validator.FieldLevel) bool {
		return entities.ActionStatus(fl.Field().String()).IsValid()
	})
	_ = v.RegisterValidation("meeting_source", func(fl validator.FieldLevel) bool {
		return entities.MeetingSource(fl.Field().String()).IsValid()
	})
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
