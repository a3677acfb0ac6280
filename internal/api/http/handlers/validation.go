package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/ottocrm/ottocrm/pkg/util"
)

var validate = validator.New()

// parseBody decodes and validates a JSON request body. Field failures are
// surfaced inline so the form can highlight the offending inputs.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(out); err != nil {
		details := map[string]any{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		return apperrors.NewValidationError("invalid payload", details)
	}
	return nil
}
