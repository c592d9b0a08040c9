package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/lotes-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// parseBody decodifica el JSON y aplica las etiquetas validate. Responde 400 y devuelve false si falla.
func parseBody(c *fiber.Ctx, dest any) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(dest); err != nil {
		return false, badRequest(c, "VALIDATION", validationMessage(err))
	}
	return true, nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return "datos inválidos (" + strings.Join(msgs, ", ") + ")"
}

// parseID exige un UUID (forma canónica) en path o query; vacío o mal formado es ErrInvalidInput.
func parseID(name, raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		return "", fmt.Errorf("%s %q no es un UUID: %w", name, raw, domain.ErrInvalidInput)
	}
	return id.String(), nil
}

// parseOptionalID como parseID pero acepta vacío.
func parseOptionalID(name, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	return parseID(name, raw)
}
