package handler

import (
	"errors"
	"net/http"
	"reflect"

	"varejopos/internal/apperr"
	"varejopos/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// ErrorBody is the error payload shape of every non-2xx response.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    string(apperr.CodeValidation),
			Message: "JSON inválido: " + err.Error(),
		}})
		return false
	}
	return validateStruct(c, req)
}

// bindQueryAndValidate does the same for query-string filters.
func bindQueryAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    string(apperr.CodeValidation),
			Message: "parâmetros inválidos: " + err.Error(),
		}})
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    string(apperr.CodeValidation),
			Message: "validação falhou",
			Fields:  fields,
		}})
		return false
	}
	return true
}

// respondError maps the service error taxonomy to HTTP at the boundary.
// VALIDATION→400, NOT_FOUND→404, CONFLICT→409, INVALID_STATE→422,
// EXTERNAL_SERVICE→502, anything else→500 with a generic message in
// production (the cause goes to the error log, never to the client).
func respondError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		_ = c.Error(err)
		message := "erro interno do servidor"
		if gin.Mode() != gin.ReleaseMode {
			message = err.Error()
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
			Code: "INTERNAL", Message: message,
		}})
		return
	}

	status := http.StatusInternalServerError
	switch e.Code {
	case apperr.CodeValidation:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	case apperr.CodeConflict:
		status = http.StatusConflict
	case apperr.CodeInvalidState:
		status = http.StatusUnprocessableEntity
	case apperr.CodeExternal:
		status = http.StatusBadGateway
	}

	if e.Err != nil {
		_ = c.Error(e.Err)
	}
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: string(e.Code), Message: e.Message}})
}

// actorID extracts the authenticated user id from the JWT claims.
func actorID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, _ := uuid.Parse(claims.UserID)
	return id
}
