package handler

import (
	"errors"
	"net/http"
	"reflect"

	"corralon/internal/apierror"
	"corralon/internal/dto"
	"corralon/internal/middleware"
	"corralon/internal/service"

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

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// paramUUID parses a path parameter; writes 400 and returns false when malformed.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// operador builds the acting operator from the JWT claims.
func operador(c *gin.Context) dto.Operador {
	claims := middleware.GetClaims(c)
	op := dto.Operador{TenantID: claims.TenantID, Rol: claims.Rol}
	op.UsuarioID, _ = uuid.Parse(claims.UserID)
	if claims.PuntoDeVenta != nil {
		op.PuntoDeVenta = *claims.PuntoDeVenta
	}
	return op
}

// ── Error mapping ─────────────────────────────────────────────────────────────

var kindStatus = map[error]int{
	service.ErrValidacion:         http.StatusUnprocessableEntity,
	service.ErrNoEncontrado:       http.StatusNotFound,
	service.ErrTransicionInvalida: http.StatusConflict,
	service.ErrConflicto:          http.StatusConflict,
	service.ErrPrecondicion:       http.StatusPreconditionFailed,
	service.ErrTimeout:            http.StatusGatewayTimeout,
}

// responderError writes the APIError for a service failure. A failed
// settlement answers with the status of its cause and exposes it as cause_code.
// Anything that is not a service error is a 500 logged by ErrorHandler.
func responderError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		return
	}

	body := &apierror.APIError{
		Detail: service.DetailOf(err),
		Code:   kind.Error(),
		Fields: service.FieldsOf(err),
	}
	if errors.Is(err, service.ErrPagoFallido) {
		body.Code = service.ErrPagoFallido.Error()
		body.CauseCode = kind.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
