package dto

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"federated-bank/internal/core/domain"
	"federated-bank/pkg/apperror"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("permission", validatePermission)
		_ = v.RegisterValidation("bank_code", validateBankCode)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

func validatePermission(fl validator.FieldLevel) bool {
	return domain.Permission(fl.Field().String()).IsKnown()
}

// validateBankCode accepts federation codes and the "self" alias.
func validateBankCode(fl validator.FieldLevel) bool {
	code := strings.ToLower(fl.Field().String())
	return code == domain.SelfBankCode || domain.ValidBankCode(code)
}

// BindError converts a gin binding failure into the taxonomy code the
// offending field belongs to. Anything else is a plain validation error.
func BindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "permission":
				return apperror.ErrInvalidScope(fmt.Sprintf("unknown permission %v", fe.Value()))
			case "bank_code":
				if fe.Field() == "ToBank" {
					return apperror.ErrInvalidDestination("unknown bank code format")
				}
			}
		}
		fe := verrs[0]
		return apperror.Validation(fe.Field() + " failed " + fe.Tag() + " validation")
	}
	return apperror.Validation("malformed request body")
}
