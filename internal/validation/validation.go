// Package validation wraps a shared go-playground validator configured with the
// domain's custom tags. Failures come back wrapped in apperrors.ErrValidation.
package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/farellandr/eventpass/internal/apperrors"
	"github.com/farellandr/eventpass/internal/models"
)

var global = New()

// New builds a validator with the ticket_type tag and json field names in messages.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ticket_type", validateTicketType)
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateTicketType(fl validator.FieldLevel) bool {
	return models.TicketType(fl.Field().String()).Valid()
}

// Struct validates s and reports every failing field.
func Struct(ctx context.Context, s any) error {
	return describe(global.StructCtx(ctx, s))
}

// Var validates a single value against tag, naming it field in the message.
func Var(field string, value any, tag string) error {
	err := global.Var(value, tag)
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrValidation, field, err)
	}
	return fmt.Errorf("%w: %s %s", apperrors.ErrValidation, field, message(vErrors[0]))
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	parts := make([]string, 0, len(vErrors))
	for _, fe := range vErrors {
		parts = append(parts, fe.Field()+" "+message(fe))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(parts, "; "))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "ticket_type":
		return "must be one of " + ticketTypeList()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func ticketTypeList() string {
	names := make([]string, 0, len(models.TicketTypes))
	for _, t := range models.TicketTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
