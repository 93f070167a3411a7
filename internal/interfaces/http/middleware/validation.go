package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validation errors name fields by their JSON or form tag
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// ValidationMessages turns validator errors into one message per field,
// e.g. "name is required". It returns nil for other errors.
func ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+" "+validationMessage(e))
	}
	return msgs
}

// HandleValidationError writes a VALIDATION_ERROR envelope
func HandleValidationError(c *gin.Context, err error) {
	msgs := ValidationMessages(err)
	if len(msgs) == 0 {
		msgs = []string{dto.DefaultMessage(dto.ErrCodeValidation)}
	}
	abortWithError(c, dto.ErrCodeValidation, msgs...)
}

func validationMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isString {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if isString {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "len":
		return "must be exactly " + e.Param() + " characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gt":
		return "must be greater than " + e.Param()
	case "lt":
		return "must be less than " + e.Param()
	case "ne":
		return "must not be " + e.Param()
	case "url":
		return "must be a valid URL"
	case "numeric":
		return "must be numeric"
	default:
		return "is invalid"
	}
}
