package validation

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct valida las etiquetas `validate` de un DTO. Devuelve nil si todo está
// bien, o un mapa campo → regla incumplida para responder al cliente.
func Struct(dto any) map[string]string {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": "invalid"}
	}

	campos := make(map[string]string, len(validationErrors))
	for _, ve := range validationErrors {
		campos[ve.Field()] = ve.Tag()
	}
	return campos
}
