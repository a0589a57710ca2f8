package service

import (
	"context"
	"strings"

	"corralon/internal/dto"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, op dto.Operador, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Estado(ctx context.Context, op dto.Operador, puntoDeVenta int) (*dto.EstadoCajaResponse, error)
	RegistrarMovimiento(ctx context.Context, op dto.Operador, req dto.MovimientoCajaRequest) (*dto.RegistrarMovimientoCajaResponse, error)
	Cerrar(ctx context.Context, op dto.Operador, req dto.CerrarCajaRequest) (*dto.SesionCajaResponse, error)
	// Movimientos lists the given session, else the open one, else the last closed.
	Movimientos(ctx context.Context, op dto.Operador, puntoDeVenta int, sesionID *uuid.UUID) (*dto.MovimientosCajaResponse, error)
	Historial(ctx context.Context, op dto.Operador, filtro dto.HistorialCajaFiltro) (*dto.HistorialCajaResponse, error)

	// RegistrarMovimientoTx is called by PagoService inside its transaction.
	// It returns the new movement and the session balance after it.
	RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, op dto.Operador, puntoDeVenta int, mov NuevoMovimientoCaja) (*model.MovimientoCaja, decimal.Decimal, error)
}

// NuevoMovimientoCaja is the input of RegistrarMovimientoTx.
type NuevoMovimientoCaja struct {
	Tipo         string
	Concepto     string
	Monto        decimal.Decimal
	Descripcion  string
	ReferenciaID *uuid.UUID
}

type cajaService struct {
	repo repository.CajaRepository
	opts Opciones
}

func NewCajaService(repo repository.CajaRepository, opts Opciones) CajaService {
	return &cajaService{repo: repo, opts: opts}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// The partial unique index ux_sesiones_caja_abierta is the authoritative guard;
// the pre-check only gives a friendlier error on the common path.

func (s *cajaService) Abrir(ctx context.Context, op dto.Operador, req dto.AbrirCajaRequest) (resp *dto.SesionCajaResponse, err error) {
	pdv, err := resolverPDV(op, req.PuntoDeVenta)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "CajaService.Abrir", attribute.Int("caja.punto_de_venta", pdv))
	defer func() { endSpan(span, err) }()

	if req.MontoInicial.IsNegative() {
		return nil, errCampos(map[string]string{"monto_inicial": "no puede ser negativo"})
	}

	sesion := &model.SesionCaja{
		TenantID:      op.TenantID,
		PuntoDeVenta:  pdv,
		UsuarioID:     op.UsuarioID,
		MontoInicial:  req.MontoInicial.Round(2),
		Estado:        model.CajaAbierta,
		Observaciones: req.Observaciones,
		OpenedAt:      s.opts.ahora(),
	}
	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		_, err := s.repo.FindSesionAbierta(ctx, tx, op.TenantID, pdv, false)
		if err == nil {
			return errCajaYaAbierta(pdv)
		}
		if !isNotFound(err) {
			return err
		}
		if err := s.repo.CreateSesion(ctx, tx, sesion); err != nil {
			if isDuplicate(err) {
				return errCajaYaAbierta(pdv)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("sesion_id", sesion.ID.String()).Int("punto_de_venta", pdv).Msg("caja abierta")
	r := sesionToResponse(sesion, decimal.Zero, decimal.Zero)
	return &r, nil
}

func errCajaYaAbierta(pdv int) *Error {
	return errConflicto("ya existe una caja abierta en el punto de venta %d", pdv)
}

// ── Estado ────────────────────────────────────────────────────────────────────

func (s *cajaService) Estado(ctx context.Context, op dto.Operador, puntoDeVenta int) (*dto.EstadoCajaResponse, error) {
	pdv, err := resolverPDV(op, puntoDeVenta)
	if err != nil {
		return nil, err
	}
	sesion, err := s.repo.FindSesionAbierta(ctx, nil, op.TenantID, pdv, false)
	if err != nil {
		if isNotFound(err) {
			return &dto.EstadoCajaResponse{PuntoDeVenta: pdv, Abierta: false}, nil
		}
		return nil, err
	}
	ingresos, egresos, err := s.repo.Totales(ctx, nil, sesion.ID)
	if err != nil {
		return nil, err
	}
	r := sesionToResponse(sesion, ingresos, egresos)
	return &dto.EstadoCajaResponse{PuntoDeVenta: pdv, Abierta: true, Sesion: &r}, nil
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────
// Movements are immutable; corrections are new "ajuste" entries.

func (s *cajaService) RegistrarMovimiento(ctx context.Context, op dto.Operador, req dto.MovimientoCajaRequest) (resp *dto.RegistrarMovimientoCajaResponse, err error) {
	pdv, err := resolverPDV(op, req.PuntoDeVenta)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "CajaService.RegistrarMovimiento",
		attribute.Int("caja.punto_de_venta", pdv), attribute.String("caja.tipo", req.Tipo))
	defer func() { endSpan(span, err) }()

	var (
		mov   *model.MovimientoCaja
		saldo decimal.Decimal
	)
	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		var err error
		mov, saldo, err = s.RegistrarMovimientoTx(ctx, tx, op, pdv, NuevoMovimientoCaja{
			Tipo:        req.Tipo,
			Concepto:    req.Concepto,
			Monto:       req.Monto,
			Descripcion: req.Descripcion,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.RegistrarMovimientoCajaResponse{
		Movimiento: movimientoToResponse(mov, saldo),
		Saldo:      saldo,
	}, nil
}

var conceptosCaja = map[string]bool{
	model.ConceptoCajaVenta:  true,
	model.ConceptoCajaGasto:  true,
	model.ConceptoCajaAjuste: true,
	model.ConceptoCajaPago:   true,
	model.ConceptoCajaCobro:  true,
}

func (s *cajaService) RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, op dto.Operador, pdv int, nuevo NuevoMovimientoCaja) (*model.MovimientoCaja, decimal.Decimal, error) {
	campos := map[string]string{}
	if nuevo.Tipo != model.MovimientoIngreso && nuevo.Tipo != model.MovimientoEgreso {
		campos["tipo"] = "debe ser ingreso o egreso"
	}
	if !conceptosCaja[nuevo.Concepto] {
		campos["concepto"] = "concepto desconocido"
	}
	if !nuevo.Monto.IsPositive() {
		campos["monto"] = "debe ser mayor a cero"
	}
	descripcion := strings.TrimSpace(nuevo.Descripcion)
	if descripcion == "" {
		campos["descripcion"] = "requerida"
	}
	if len(campos) > 0 {
		return nil, decimal.Zero, errCampos(campos)
	}

	sesion, err := s.repo.FindSesionAbierta(ctx, tx, op.TenantID, pdv, true)
	if err != nil {
		if isNotFound(err) {
			return nil, decimal.Zero, errPrecondicion("no hay una caja abierta en el punto de venta %d", pdv)
		}
		return nil, decimal.Zero, err
	}

	mov := &model.MovimientoCaja{
		SesionCajaID: sesion.ID,
		Tipo:         nuevo.Tipo,
		Concepto:     nuevo.Concepto,
		Monto:        nuevo.Monto.Round(2),
		Descripcion:  descripcion,
		UsuarioID:    op.UsuarioID,
		ReferenciaID: nuevo.ReferenciaID,
	}
	if err := s.repo.CreateMovimiento(ctx, tx, mov); err != nil {
		return nil, decimal.Zero, err
	}
	ingresos, egresos, err := s.repo.Totales(ctx, tx, sesion.ID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return mov, saldoSesion(sesion, ingresos, egresos), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Blind count: the variance is computed after receiving the counted amount and
// recorded as-is. The classification is informational.

func (s *cajaService) Cerrar(ctx context.Context, op dto.Operador, req dto.CerrarCajaRequest) (resp *dto.SesionCajaResponse, err error) {
	pdv, err := resolverPDV(op, req.PuntoDeVenta)
	if err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "CajaService.Cerrar", attribute.Int("caja.punto_de_venta", pdv))
	defer func() { endSpan(span, err) }()

	if req.MontoContado.IsNegative() {
		return nil, errCampos(map[string]string{"monto_contado": "no puede ser negativo"})
	}

	var (
		sesion            *model.SesionCaja
		ingresos, egresos decimal.Decimal
	)
	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		var err error
		sesion, err = s.repo.FindSesionAbierta(ctx, tx, op.TenantID, pdv, true)
		if err != nil {
			if isNotFound(err) {
				return errNoEncontrado("no hay una caja abierta en el punto de venta %d", pdv)
			}
			return err
		}
		ingresos, egresos, err = s.repo.Totales(ctx, tx, sesion.ID)
		if err != nil {
			return err
		}

		esperado := saldoSesion(sesion, ingresos, egresos)
		contado := req.MontoContado.Round(2)
		desvio := contado.Sub(esperado)
		var pct decimal.Decimal
		if !esperado.IsZero() {
			pct = desvio.Div(esperado).Mul(decimal.NewFromInt(100)).Round(2)
		}
		clasificacion := clasificarDesvio(pct)
		cerrada := s.opts.ahora()

		sesion.MontoEsperado = &esperado
		sesion.MontoDeclarado = &contado
		sesion.Desvio = &desvio
		sesion.DesvioPct = &pct
		sesion.ClasificacionDesvio = &clasificacion
		sesion.ObservacionesCierre = req.Observaciones
		sesion.Estado = model.CajaCerrada
		sesion.ClosedAt = &cerrada
		return s.repo.UpdateSesion(ctx, tx, sesion)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Int("punto_de_venta", pdv).
		Str("desvio", sesion.Desvio.String()).
		Str("clasificacion", *sesion.ClasificacionDesvio).
		Msg("caja cerrada")

	r := sesionToResponse(sesion, ingresos, egresos)
	return &r, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func (s *cajaService) Movimientos(ctx context.Context, op dto.Operador, puntoDeVenta int, sesionID *uuid.UUID) (*dto.MovimientosCajaResponse, error) {
	sesion, err := s.sesionParaConsulta(ctx, op, puntoDeVenta, sesionID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.ListMovimientos(ctx, sesion.ID)
	if err != nil {
		return nil, err
	}

	ingresos, egresos := decimal.Zero, decimal.Zero
	saldo := sesion.MontoInicial
	out := make([]dto.MovimientoCajaResponse, 0, len(movs))
	for i := range movs {
		m := &movs[i]
		if m.Tipo == model.MovimientoIngreso {
			ingresos = ingresos.Add(m.Monto)
		} else {
			egresos = egresos.Add(m.Monto)
		}
		saldo = saldo.Add(m.Signo())
		out = append(out, movimientoToResponse(m, saldo))
	}
	return &dto.MovimientosCajaResponse{
		Sesion:      sesionToResponse(sesion, ingresos, egresos),
		Movimientos: out,
	}, nil
}

func (s *cajaService) sesionParaConsulta(ctx context.Context, op dto.Operador, puntoDeVenta int, sesionID *uuid.UUID) (*model.SesionCaja, error) {
	if sesionID != nil {
		sesion, err := s.repo.FindSesionByID(ctx, op.TenantID, *sesionID)
		if err != nil {
			if isNotFound(err) {
				return nil, errNoEncontrado("sesion de caja %s no encontrada", *sesionID)
			}
			return nil, err
		}
		return sesion, nil
	}

	pdv, err := resolverPDV(op, puntoDeVenta)
	if err != nil {
		return nil, err
	}
	sesion, err := s.repo.FindSesionAbierta(ctx, nil, op.TenantID, pdv, false)
	if err == nil {
		return sesion, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	sesion, err = s.repo.FindUltimaCerrada(ctx, op.TenantID, pdv)
	if err != nil {
		if isNotFound(err) {
			return nil, errNoEncontrado("el punto de venta %d no tiene sesiones de caja", pdv)
		}
		return nil, err
	}
	return sesion, nil
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *cajaService) Historial(ctx context.Context, op dto.Operador, filtro dto.HistorialCajaFiltro) (*dto.HistorialCajaResponse, error) {
	offset := filtro.Normalizar()
	sesiones, total, err := s.repo.ListCerradas(ctx, op.TenantID, filtro.PuntoDeVenta, offset, filtro.Limit)
	if err != nil {
		return nil, err
	}
	resp := &dto.HistorialCajaResponse{
		Data:  make([]dto.SesionCajaResponse, 0, len(sesiones)),
		Total: total,
		Page:  filtro.Page,
		Limit: filtro.Limit,
	}
	for i := range sesiones {
		ses := &sesiones[i]
		ingresos, egresos, err := s.repo.Totales(ctx, nil, ses.ID)
		if err != nil {
			return nil, err
		}
		resp.Data = append(resp.Data, sesionToResponse(ses, ingresos, egresos))
	}
	return resp, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func saldoSesion(s *model.SesionCaja, ingresos, egresos decimal.Decimal) decimal.Decimal {
	return s.MontoInicial.Add(ingresos).Sub(egresos)
}

// clasificarDesvio returns "normal" | "advertencia" | "critico"
// normal: |desvio| <= 1%, advertencia: <= 5%, critico: > 5%
func clasificarDesvio(pct decimal.Decimal) string {
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return "normal"
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return "advertencia"
	default:
		return "critico"
	}
}

func sesionToResponse(s *model.SesionCaja, ingresos, egresos decimal.Decimal) dto.SesionCajaResponse {
	r := dto.SesionCajaResponse{
		ID:                  s.ID.String(),
		PuntoDeVenta:        s.PuntoDeVenta,
		UsuarioID:           s.UsuarioID.String(),
		Estado:              s.Estado,
		MontoInicial:        s.MontoInicial,
		TotalIngresos:       ingresos,
		TotalEgresos:        egresos,
		Saldo:               saldoSesion(s, ingresos, egresos),
		MontoEsperado:       s.MontoEsperado,
		MontoDeclarado:      s.MontoDeclarado,
		Observaciones:       s.Observaciones,
		ObservacionesCierre: s.ObservacionesCierre,
		OpenedAt:            formatTS(s.OpenedAt),
	}
	if s.Desvio != nil && s.DesvioPct != nil && s.ClasificacionDesvio != nil {
		r.Desvio = &dto.DesvioResponse{
			Monto:         *s.Desvio,
			Porcentaje:    *s.DesvioPct,
			Clasificacion: *s.ClasificacionDesvio,
		}
	}
	if s.ClosedAt != nil {
		t := formatTS(*s.ClosedAt)
		r.ClosedAt = &t
	}
	return r
}

func movimientoToResponse(m *model.MovimientoCaja, saldo decimal.Decimal) dto.MovimientoCajaResponse {
	return dto.MovimientoCajaResponse{
		ID:             m.ID.String(),
		Tipo:           m.Tipo,
		Concepto:       m.Concepto,
		Monto:          m.Monto,
		Descripcion:    m.Descripcion,
		UsuarioID:      m.UsuarioID.String(),
		ReferenciaID:   idStr(m.ReferenciaID),
		SaldoPosterior: saldo,
		CreatedAt:      formatTS(m.CreatedAt),
	}
}
