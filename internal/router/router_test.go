package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"corralon/internal/apierror"
	"corralon/internal/config"
	"corralon/internal/infra"
	"corralon/internal/middleware"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key"

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	engine    *gin.Engine
	proveedor *model.Proveedor
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=off", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), infra.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, infra.RunMigrations(db))

	cfg := &config.Config{
		Env:                  "test",
		JWTSecret:            testSecret,
		TxTimeoutSeconds:     5,
		ChequePlazoLegalDias: 30,
	}

	prov := &model.Proveedor{TenantID: "t1", RazonSocial: "Cementos del Sur SA", CUIT: "30-22222222-2", Activo: true}
	require.NoError(t, repository.NewEntidadRepository(db).CreateProveedor(context.Background(), prov))

	return &testEnv{
		engine:    New(cfg, db, nil, nil, NewServices(cfg, db, nil)),
		proveedor: prov,
	}
}

func token(t *testing.T, tenant, rol string) string {
	t.Helper()
	pdv := 1
	claims := middleware.JWTClaims{
		UserID:       uuid.NewString(),
		Username:     rol,
		TenantID:     tenant,
		Rol:          rol,
		PuntoDeVenta: &pdv,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func do(t *testing.T, env *testEnv, method, path string, body any, tok string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func crearTercero(t *testing.T, env *testEnv, tok, numero string, monto float64) string {
	t.Helper()
	w := do(t, env, http.MethodPost, "/v1/cheques", map[string]any{
		"tipo":          "tercero",
		"banco":         "Banco Nacion",
		"numero":        numero,
		"monto":         monto,
		"fecha_emision": "2024-03-01",
		"fecha_pago":    "2024-04-01",
		"librador":      "Juan Gomez",
	}, tok)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c struct {
		ID string `json:"id"`
	}
	decode(t, w, &c)
	return c.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)
	w := do(t, env, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, true, body["ok"])
	assert.NotContains(t, body, "redis")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestAutenticacion(t *testing.T) {
	env := setupTestEnv(t)

	w := do(t, env, http.MethodGet, "/v1/cheques", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, env, http.MethodGet, "/v1/cheques", nil, "no-es-un-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	otro, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{
		UserID: uuid.NewString(), TenantID: "t1", Rol: middleware.RolAdministrador,
	}).SignedString([]byte("otra-clave"))
	require.NoError(t, err)
	w = do(t, env, http.MethodGet, "/v1/cheques", nil, otro)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, env, http.MethodGet, "/v1/cheques", nil, token(t, "", middleware.RolCajero))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "tokens must carry a tenant")

	w = do(t, env, http.MethodGet, "/v1/cheques", nil, token(t, "t1", "invitado"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPermisosPorRol(t *testing.T) {
	env := setupTestEnv(t)
	cajero := token(t, "t1", middleware.RolCajero)
	supervisor := token(t, "t1", middleware.RolSupervisor)
	admin := token(t, "t1", middleware.RolAdministrador)
	id := crearTercero(t, env, cajero, "1", 100)

	w := do(t, env, http.MethodPatch, "/v1/cheques/"+id+"/estado", map[string]string{"estado": "depositado"}, cajero)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, env, http.MethodPatch, "/v1/cheques/"+id+"/estado", map[string]string{"estado": "depositado"}, supervisor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	correccion := map[string]string{"estado": "pendiente", "motivo": "deposito cargado por error"}
	w = do(t, env, http.MethodPatch, "/v1/cheques/"+id+"/correccion", correccion, supervisor)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, env, http.MethodPatch, "/v1/cheques/"+id+"/correccion", correccion, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var c struct {
		Estado string `json:"estado"`
	}
	decode(t, w, &c)
	assert.Equal(t, "pendiente", c.Estado)

	w = do(t, env, http.MethodPost, "/v1/caja/cerrar", map[string]any{"monto_contado": 0}, cajero)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestErroresDeEntrada(t *testing.T) {
	env := setupTestEnv(t)
	tok := token(t, "t1", middleware.RolSupervisor)

	w := do(t, env, http.MethodPost, "/v1/cheques", "{no json", tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, env, http.MethodPost, "/v1/cheques", map[string]any{"tipo": "otro", "monto": 0}, tok)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var apiErr apierror.APIError
	decode(t, w, &apiErr)
	assert.Equal(t, "validacion", apiErr.Code)
	assert.Contains(t, apiErr.Fields, "Tipo")

	w = do(t, env, http.MethodGet, "/v1/cheques/no-uuid", nil, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, env, http.MethodGet, "/v1/cheques/"+uuid.NewString(), nil, tok)
	require.Equal(t, http.StatusNotFound, w.Code)
	decode(t, w, &apiErr)
	assert.Equal(t, "no_encontrado", apiErr.Code)

	id := crearTercero(t, env, tok, "7", 10)
	w = do(t, env, http.MethodPatch, "/v1/cheques/"+id+"/estado", map[string]string{"estado": "cobrado"}, tok)
	require.Equal(t, http.StatusConflict, w.Code)
	decode(t, w, &apiErr)
	assert.Equal(t, "transicion_invalida", apiErr.Code)
}

func TestCicloCaja(t *testing.T) {
	env := setupTestEnv(t)
	cajero := token(t, "t1", middleware.RolCajero)
	supervisor := token(t, "t1", middleware.RolSupervisor)

	w := do(t, env, http.MethodPost, "/v1/caja/abrir", map[string]any{"monto_inicial": 1000}, cajero)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, env, http.MethodPost, "/v1/caja/abrir", map[string]any{"monto_inicial": 1000}, cajero)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, env, http.MethodPost, "/v1/caja/movimiento", map[string]any{
		"tipo": "egreso", "concepto": "gasto", "monto": 200, "descripcion": "flete arena",
	}, cajero)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, env, http.MethodPost, "/v1/caja/cerrar", map[string]any{"monto_contado": 750}, supervisor)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cierre struct {
		Estado string `json:"estado"`
		Desvio struct {
			Monto         decimal.Decimal `json:"monto"`
			Clasificacion string          `json:"clasificacion"`
		} `json:"desvio"`
	}
	decode(t, w, &cierre)
	assert.Equal(t, "cerrada", cierre.Estado)
	assert.True(t, cierre.Desvio.Monto.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, "critico", cierre.Desvio.Clasificacion)

	w = do(t, env, http.MethodPost, "/v1/caja/movimiento", map[string]any{
		"tipo": "ingreso", "concepto": "venta", "monto": 10, "descripcion": "venta mostrador",
	}, cajero)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = do(t, env, http.MethodGet, "/v1/caja/historial", nil, supervisor)
	require.Equal(t, http.StatusOK, w.Code)
	var hist struct {
		Total int64 `json:"total"`
	}
	decode(t, w, &hist)
	assert.Equal(t, int64(1), hist.Total)
}

func TestPagoProveedor(t *testing.T) {
	env := setupTestEnv(t)
	cajero := token(t, "t1", middleware.RolCajero)
	provID := env.proveedor.ID.String()

	// Without an open session a cash settlement fails as a whole.
	w := do(t, env, http.MethodPost, "/v1/pagos", map[string]any{"proveedor_id": provID, "monto_efectivo": 10}, cajero)
	require.Equal(t, http.StatusPreconditionFailed, w.Code, w.Body.String())
	var apiErr apierror.APIError
	decode(t, w, &apiErr)
	assert.Equal(t, "pago_fallido", apiErr.Code)
	assert.Equal(t, "precondicion", apiErr.CauseCode)

	w = do(t, env, http.MethodPost, "/v1/caja/abrir", map[string]any{"monto_inicial": 1000}, cajero)
	require.Equal(t, http.StatusCreated, w.Code)
	chequeID := crearTercero(t, env, cajero, "100", 300)

	pago := map[string]any{
		"proveedor_id":     provID,
		"monto_efectivo":   500,
		"cheques_terceros": []string{chequeID},
	}
	w = do(t, env, http.MethodPost, "/v1/pagos", pago, cajero, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		ID    string          `json:"id"`
		Total decimal.Decimal `json:"total"`
	}
	decode(t, w, &resp)
	assert.True(t, resp.Total.Equal(decimal.NewFromInt(800)))

	// The consumed check cannot be reused.
	w = do(t, env, http.MethodPost, "/v1/pagos", pago, cajero)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	decode(t, w, &apiErr)
	assert.Equal(t, "validacion", apiErr.Code)
	assert.Contains(t, apiErr.Detail, "ya fue usado")

	w = do(t, env, http.MethodGet, "/v1/pagos/"+resp.ID, nil, cajero)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, env, http.MethodGet, "/v1/caja/estado", nil, cajero)
	require.Equal(t, http.StatusOK, w.Code)
	var estado struct {
		Sesion struct {
			Saldo decimal.Decimal `json:"saldo"`
		} `json:"sesion"`
	}
	decode(t, w, &estado)
	assert.True(t, estado.Sesion.Saldo.Equal(decimal.NewFromInt(500)))

	w = do(t, env, http.MethodGet, "/v1/cuenta-corriente/proveedor/"+provID, nil, cajero)
	require.Equal(t, http.StatusOK, w.Code)
	var cuenta struct {
		Saldo     decimal.Decimal  `json:"saldo"`
		Historial []map[string]any `json:"historial"`
	}
	decode(t, w, &cuenta)
	assert.True(t, cuenta.Saldo.Equal(decimal.NewFromInt(800)))
	assert.Len(t, cuenta.Historial, 1)

	// Other tenants see nothing.
	w = do(t, env, http.MethodGet, "/v1/pagos/"+resp.ID, nil, token(t, "t2", middleware.RolCajero))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
