package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"game-catalog-sync/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError renders err as {"error": {"code", "message"}} with the status of its kind.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= fiber.StatusInternalServerError {
			log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(appErr.Status).JSON(fiber.Map{
			"error": errorBody{Code: appErr.Code, Message: appErr.Message},
		})
	}

	log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": errorBody{Code: apperrors.CodeInternal, Message: "An unexpected error occurred"},
	})
}

// validateStruct turns validator failures into a BAD_REQUEST naming the first bad field.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.BadRequest("invalid input data", err)
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	var message string
	switch fe.Tag() {
	case "required":
		message = field + " is required"
	case "min", "gte", "gt":
		message = fmt.Sprintf("%s must be at least %s", field, fallback(fe.Param(), "1"))
	case "max", "lte":
		message = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "dive":
		message = field + " contains an invalid value"
	default:
		message = field + " is invalid"
	}
	return apperrors.BadRequest(message, err)
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
