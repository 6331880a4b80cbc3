package global

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("event_type", validateEventType)
	_ = Validate.RegisterValidation("not_blank", validateNotBlank)
}

// validateEventType kiểm tra type của inbound event
func validateEventType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "consultation", "universal", "reminder":
		return true
	}
	return false
}

// validateNotBlank kiểm tra string không chỉ toàn whitespace
func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
