package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cashbox-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores nombran el campo como lo ve el cliente (tag json / query).
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindJSON parsea el cuerpo y lo valida. Si devuelve false la respuesta ya fue escrita.
func bindJSON(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if resp := validateStruct(out); resp != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return true, nil
}

// bindQuery igual que bindJSON para la query string.
func bindQuery(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if resp := validateStruct(out); resp != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return true, nil
}

func validateStruct(obj interface{}) *dto.ErrorResponse {
	err := validate.Struct(obj)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldName(fe)] = errorMessage(fe)
	}
	return &dto.ErrorResponse{Code: "VALIDATION", Message: "validación fallida", Fields: fields}
}

// fieldName nombre del campo como lo envía el cliente: "chips", "chips[500]".
func fieldName(fe validator.FieldError) string {
	return fe.Field()
}

func errorMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", field)
	case "required_without":
		return fmt.Sprintf("%s es requerido si no se envía %s", field, strings.ToLower(fe.Param()))
	case "min":
		if isString {
			return fmt.Sprintf("%s debe tener al menos %s caracteres", field, fe.Param())
		}
		if fe.Kind() == reflect.Map || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s debe tener al menos %s elemento(s)", field, fe.Param())
		}
		return fmt.Sprintf("%s debe ser al menos %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s debe tener como máximo %s caracteres", field, fe.Param())
		}
		return fmt.Sprintf("%s debe ser como máximo %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s debe ser mayor o igual que %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s es inválido", field)
	}
}
