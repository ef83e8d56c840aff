package validator

import (
	"log"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// registerCustomRules - регистрирует все кастомные теги.
// Ошибка здесь - это ошибка времени запуска приложения, поэтому log.Fatalf.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'username': буквы, цифры и @ . + - _ (имя "me" занято под /users/me)
	mustRegister("username", validateUsername)

	// 'notblank': строка не из одних пробелов
	mustRegister("notblank", validateNotBlank)

	// 'image_data': data:image/<type>;base64,<payload>
	// Здесь только форма строки, сами байты проверяет imageprocessor.
	mustRegister("image_data", validateImageData)
}

func validateUsername(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Пустое значение - забота 'required'
	}
	return usernamePattern.MatchString(value) && value != "me"
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validateImageData(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	header, payload, ok := strings.Cut(value, ",")
	return ok && payload != "" &&
		strings.HasPrefix(header, "data:image/") &&
		strings.HasSuffix(header, ";base64")
}
