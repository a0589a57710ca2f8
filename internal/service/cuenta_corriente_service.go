package service

import (
	"context"
	"strings"

	"corralon/internal/dto"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CuentaCorrienteService interface {
	RegistrarMovimiento(ctx context.Context, op dto.Operador, req dto.MovimientoCuentaRequest) (*dto.MovimientoCuentaResponse, error)
	Saldo(ctx context.Context, op dto.Operador, entidad string, id uuid.UUID) (decimal.Decimal, error)
	Historial(ctx context.Context, op dto.Operador, entidad string, id uuid.UUID, pag dto.Paginacion) (*dto.CuentaCorrienteResponse, error)

	// RegistrarMovimientoTx appends m inside tx. Called by PagoService.
	RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, op dto.Operador, m *model.MovimientoCuentaCorriente) error
	// Entidad resolves the client or provider behind a current account.
	Entidad(ctx context.Context, tx *gorm.DB, op dto.Operador, entidad string, id uuid.UUID) (*dto.EntidadResumen, error)
}

type cuentaCorrienteService struct {
	repo      repository.CuentaCorrienteRepository
	entidades repository.EntidadRepository
	cheques   repository.ChequeRepository
	opts      Opciones
}

func NewCuentaCorrienteService(
	repo repository.CuentaCorrienteRepository,
	entidades repository.EntidadRepository,
	cheques repository.ChequeRepository,
	opts Opciones,
) CuentaCorrienteService {
	return &cuentaCorrienteService{repo: repo, entidades: entidades, cheques: cheques, opts: opts}
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

func (s *cuentaCorrienteService) RegistrarMovimiento(ctx context.Context, op dto.Operador, req dto.MovimientoCuentaRequest) (*dto.MovimientoCuentaResponse, error) {
	clienteID, err := parseUUIDOpt("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	proveedorID, err := parseUUIDOpt("proveedor_id", req.ProveedorID)
	if err != nil {
		return nil, err
	}
	chequeID, err := parseUUIDOpt("cheque_id", req.ChequeID)
	if err != nil {
		return nil, err
	}
	fecha := s.opts.ahora()
	if req.Fecha != nil && *req.Fecha != "" {
		if fecha, err = parseFecha("fecha", *req.Fecha); err != nil {
			return nil, err
		}
	}

	m := &model.MovimientoCuentaCorriente{
		ClienteID:   clienteID,
		ProveedorID: proveedorID,
		Tipo:        req.Tipo,
		Monto:       req.Monto,
		Concepto:    req.Concepto,
		Descripcion: req.Descripcion,
		ChequeID:    chequeID,
		Fecha:       fecha,
	}

	var saldo decimal.Decimal
	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		if err := s.RegistrarMovimientoTx(ctx, tx, op, m); err != nil {
			return err
		}
		t, err := s.repo.Totales(ctx, tx, refDe(op, m))
		if err != nil {
			return err
		}
		saldo = saldoDe(entidadDe(m), t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	r := movimientoCuentaToResponse(m, saldo)
	return &r, nil
}

var conceptosCuenta = map[string]bool{
	model.ConceptoCuentaVenta:        true,
	model.ConceptoCuentaPago:         true,
	model.ConceptoCuentaCheque:       true,
	model.ConceptoCuentaAjuste:       true,
	model.ConceptoCuentaSaldoInicial: true,
}

func (s *cuentaCorrienteService) RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, op dto.Operador, m *model.MovimientoCuentaCorriente) error {
	campos := map[string]string{}
	if (m.ClienteID == nil) == (m.ProveedorID == nil) {
		campos["entidad"] = "indicar exactamente uno de cliente_id o proveedor_id"
	}
	if m.Tipo != model.CuentaDebito && m.Tipo != model.CuentaCredito {
		campos["tipo"] = "debe ser debito o credito"
	}
	if !conceptosCuenta[m.Concepto] {
		campos["concepto"] = "concepto desconocido"
	}
	if !m.Monto.IsPositive() {
		campos["monto"] = "debe ser mayor a cero"
	}
	m.Descripcion = strings.TrimSpace(m.Descripcion)
	if m.Descripcion == "" {
		campos["descripcion"] = "requerida"
	}
	if len(campos) > 0 {
		return errCampos(campos)
	}

	if m.ClienteID != nil {
		if _, err := s.Entidad(ctx, tx, op, model.EntidadCliente, *m.ClienteID); err != nil {
			return err
		}
	} else {
		if _, err := s.Entidad(ctx, tx, op, model.EntidadProveedor, *m.ProveedorID); err != nil {
			return err
		}
	}
	if m.ChequeID != nil {
		if _, err := s.cheques.FindLive(ctx, tx, op.TenantID, *m.ChequeID); err != nil {
			if isNotFound(err) {
				return errNoEncontrado("cheque %s no encontrado", *m.ChequeID)
			}
			return err
		}
	}

	m.TenantID = op.TenantID
	m.UsuarioID = op.UsuarioID
	m.Monto = m.Monto.Round(2)
	if m.Fecha.IsZero() {
		m.Fecha = s.opts.ahora()
	}
	return s.repo.Create(ctx, tx, m)
}

// ── Saldo ─────────────────────────────────────────────────────────────────────

func (s *cuentaCorrienteService) Saldo(ctx context.Context, op dto.Operador, entidad string, id uuid.UUID) (decimal.Decimal, error) {
	if _, err := s.Entidad(ctx, nil, op, entidad, id); err != nil {
		return decimal.Zero, err
	}
	t, err := s.repo.Totales(ctx, nil, repository.CuentaRef{TenantID: op.TenantID, Entidad: entidad, ID: id})
	if err != nil {
		return decimal.Zero, err
	}
	return saldoDe(entidad, t), nil
}

// ── Historial ─────────────────────────────────────────────────────────────────
// Newest first. SaldoPosterior on each row is derived from the full balance
// minus the rows newer than it, so it does not depend on page boundaries.

func (s *cuentaCorrienteService) Historial(ctx context.Context, op dto.Operador, entidad string, id uuid.UUID, pag dto.Paginacion) (*dto.CuentaCorrienteResponse, error) {
	ent, err := s.Entidad(ctx, nil, op, entidad, id)
	if err != nil {
		return nil, err
	}
	ref := repository.CuentaRef{TenantID: op.TenantID, Entidad: entidad, ID: id}
	offset := pag.Normalizar()

	t, err := s.repo.Totales(ctx, nil, ref)
	if err != nil {
		return nil, err
	}
	saldo := saldoDe(entidad, t)

	movs, total, err := s.repo.List(ctx, ref, offset, pag.Limit)
	if err != nil {
		return nil, err
	}
	recientes, err := s.repo.TotalesRecientes(ctx, ref, offset)
	if err != nil {
		return nil, err
	}

	resp := &dto.CuentaCorrienteResponse{
		Entidad:   *ent,
		Saldo:     saldo,
		Historial: make([]dto.MovimientoCuentaResponse, 0, len(movs)),
		Total:     total,
		Page:      pag.Page,
		Limit:     pag.Limit,
	}
	if entidad == model.EntidadCliente {
		cli, err := s.entidades.FindCliente(ctx, nil, op.TenantID, id)
		if err != nil {
			return nil, err
		}
		resp.LimiteCredito = cli.LimiteCredito
		resp.ExcedeLimite = cli.LimiteCredito != nil && saldo.GreaterThan(*cli.LimiteCredito)
	}

	corriente := saldo.Sub(saldoDe(entidad, recientes))
	for i := range movs {
		m := &movs[i]
		resp.Historial = append(resp.Historial, movimientoCuentaToResponse(m, corriente))
		corriente = corriente.Sub(m.Signo())
	}
	return resp, nil
}

// ── Entidad ───────────────────────────────────────────────────────────────────

func (s *cuentaCorrienteService) Entidad(ctx context.Context, tx *gorm.DB, op dto.Operador, entidad string, id uuid.UUID) (*dto.EntidadResumen, error) {
	switch entidad {
	case model.EntidadCliente:
		c, err := s.entidades.FindCliente(ctx, tx, op.TenantID, id)
		if err != nil {
			if isNotFound(err) {
				return nil, errNoEncontrado("cliente %s no encontrado", id)
			}
			return nil, err
		}
		return &dto.EntidadResumen{ID: c.ID.String(), Tipo: entidad, Nombre: c.Nombre, CUIT: c.CUIT, Email: c.Email}, nil
	case model.EntidadProveedor:
		p, err := s.entidades.FindProveedor(ctx, tx, op.TenantID, id)
		if err != nil {
			if isNotFound(err) {
				return nil, errNoEncontrado("proveedor %s no encontrado", id)
			}
			return nil, err
		}
		cuit := p.CUIT
		return &dto.EntidadResumen{ID: p.ID.String(), Tipo: entidad, Nombre: p.RazonSocial, CUIT: &cuit, Email: p.Email}, nil
	default:
		return nil, errCampos(map[string]string{"tipo": "debe ser cliente o proveedor"})
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// saldoDe applies the sign convention: a client balance is what they owe us
// (debitos - creditos); a provider balance is what we owe them (creditos - debitos).
func saldoDe(entidad string, t repository.Totales) decimal.Decimal {
	if entidad == model.EntidadProveedor {
		return t.Creditos.Sub(t.Debitos)
	}
	return t.Debitos.Sub(t.Creditos)
}

func entidadDe(m *model.MovimientoCuentaCorriente) string {
	if m.ProveedorID != nil {
		return model.EntidadProveedor
	}
	return model.EntidadCliente
}

func refDe(op dto.Operador, m *model.MovimientoCuentaCorriente) repository.CuentaRef {
	if m.ProveedorID != nil {
		return repository.CuentaRef{TenantID: op.TenantID, Entidad: model.EntidadProveedor, ID: *m.ProveedorID}
	}
	return repository.CuentaRef{TenantID: op.TenantID, Entidad: model.EntidadCliente, ID: *m.ClienteID}
}

func movimientoCuentaToResponse(m *model.MovimientoCuentaCorriente, saldo decimal.Decimal) dto.MovimientoCuentaResponse {
	r := dto.MovimientoCuentaResponse{
		ID:             m.ID.String(),
		Tipo:           m.Tipo,
		Monto:          m.Monto,
		Concepto:       m.Concepto,
		Descripcion:    m.Descripcion,
		Fecha:          formatTS(m.Fecha),
		PagoID:         idStr(m.PagoID),
		SaldoPosterior: saldo,
	}
	if m.Cheque != nil {
		res := m.Cheque.Resumen()
		r.Cheque = &res
	}
	return r
}
