package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"corralon/internal/dto"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks corralon/internal/service Publisher,IdempotencyStore

// Publisher receives settlement events after the transaction committed.
type Publisher interface {
	PagoRegistrado(ctx context.Context, evt dto.PagoRegistradoEvento) error
}

// IdempotencyStore guards POST /v1/pagos against replays of the same key.
type IdempotencyStore interface {
	// Reservar claims key; false means it was already used.
	Reservar(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Confirmar(ctx context.Context, key, pagoID string, ttl time.Duration) error
	Liberar(ctx context.Context, key string) error
}

type PagoService interface {
	// Registrar settles a provider debt (or collects from a client) atomically.
	// Validation failures come back before any side effect as plain errors;
	// failures inside the transaction come back as ErrPagoFallido wrapping the cause.
	Registrar(ctx context.Context, op dto.Operador, req dto.RegistrarPagoRequest, idempotencyKey string) (*dto.PagoResponse, error)
	Obtener(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.PagoResponse, error)
}

type pagoService struct {
	repo       repository.PagoRepository
	chequeRepo repository.ChequeRepository
	cheques    ChequeService
	caja       CajaService
	cuentas    CuentaCorrienteService
	publisher  Publisher
	idem       IdempotencyStore
	idemTTL    time.Duration
	opts       Opciones
}

// NewPagoService wires the orchestrator. publisher and idem may be nil.
func NewPagoService(
	repo repository.PagoRepository,
	chequeRepo repository.ChequeRepository,
	cheques ChequeService,
	caja CajaService,
	cuentas CuentaCorrienteService,
	publisher Publisher,
	idem IdempotencyStore,
	idemTTL time.Duration,
	opts Opciones,
) PagoService {
	return &pagoService{
		repo:       repo,
		chequeRepo: chequeRepo,
		cheques:    cheques,
		caja:       caja,
		cuentas:    cuentas,
		publisher:  publisher,
		idem:       idem,
		idemTTL:    idemTTL,
		opts:       opts,
	}
}

// plan is a validated settlement ready to execute.
type plan struct {
	entidad          *dto.EntidadResumen
	proveedorID      *uuid.UUID
	clienteID        *uuid.UUID
	pdv              int
	fecha            time.Time
	efectivo         decimal.Decimal
	transferencia    decimal.Decimal
	terceros         []model.Cheque
	montoTerceros    decimal.Decimal
	montoPropios     decimal.Decimal
	montoRecibidos   decimal.Decimal
	total            decimal.Decimal
	chequesPropios   []dto.ChequePropioSpec
	chequesRecibidos []dto.ChequeRecibidoSpec
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// 1. validate (no side effects)
// 2. BEGIN TX
// 3. cash movement when the cash component is > 0
// 4. consume third-party checks
// 5. issue own checks (provider) / register received checks (client)
// 6. one current-account credito for the total
// 7. COMMIT, or roll everything back
// 8. publish pago.registrado (after commit only)

func (s *pagoService) Registrar(ctx context.Context, op dto.Operador, req dto.RegistrarPagoRequest, idempotencyKey string) (resp *dto.PagoResponse, err error) {
	ctx, span := startSpan(ctx, "PagoService.Registrar")
	defer func() { endSpan(span, err) }()

	idemKey := ""
	if key := strings.TrimSpace(idempotencyKey); key != "" && s.idem != nil {
		idemKey = "idem:pagos:" + op.TenantID + ":" + key
		ok, rerr := s.idem.Reservar(ctx, idemKey, s.idemTTL)
		if rerr != nil {
			return nil, fmt.Errorf("idempotencia: %w", rerr)
		}
		if !ok {
			return nil, errConflicto("la clave de idempotencia %q ya fue utilizada", key)
		}
		defer func() {
			if err != nil {
				if lerr := s.idem.Liberar(context.WithoutCancel(ctx), idemKey); lerr != nil {
					log.Warn().Err(lerr).Str("key", key).Msg("pago: no se pudo liberar la clave de idempotencia")
				}
			}
		}()
	}

	p, err := s.validar(ctx, op, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("pago.entidad", p.entidad.Tipo),
		attribute.String("pago.entidad_id", p.entidad.ID),
		attribute.String("pago.total", p.total.String()),
	)

	pago := &model.Pago{
		ID:                      uuid.New(),
		TenantID:                op.TenantID,
		ProveedorID:             p.proveedorID,
		ClienteID:               p.clienteID,
		Fecha:                   p.fecha,
		Observacion:             req.Observacion,
		MontoEfectivo:           p.efectivo,
		MontoTransferencia:      p.transferencia,
		ReferenciaTransferencia: req.ReferenciaTransferencia,
		MontoChequesTerceros:    p.montoTerceros.Add(p.montoRecibidos),
		MontoChequesPropios:     p.montoPropios,
		Total:                   p.total,
		UsuarioID:               op.UsuarioID,
	}
	var detalle model.DetallePago

	txErr := runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		if p.efectivo.IsPositive() {
			mov := NuevoMovimientoCaja{
				Tipo:         model.MovimientoEgreso,
				Concepto:     model.ConceptoCajaPago,
				Monto:        p.efectivo,
				Descripcion:  fmt.Sprintf("Pago a %s (%s)", p.entidad.Nombre, corto(pago.ID)),
				ReferenciaID: &pago.ID,
			}
			if p.clienteID != nil {
				mov.Tipo = model.MovimientoIngreso
				mov.Concepto = model.ConceptoCajaCobro
				mov.Descripcion = fmt.Sprintf("Cobro a %s (%s)", p.entidad.Nombre, corto(pago.ID))
			}
			m, _, err := s.caja.RegistrarMovimientoTx(ctx, tx, op, p.pdv, mov)
			if err != nil {
				return err
			}
			pago.PuntoDeVenta = &p.pdv
			pago.MovimientoCajaID = &m.ID
		}

		// Amounts come from the consumed rows, not from validar: an edit may
		// have committed in between.
		montoTerceros := decimal.Zero
		for _, c := range p.terceros {
			usado, err := s.cheques.ConsumirTerceroTx(ctx, tx, op, c.ID, &pago.ID)
			if err != nil {
				return err
			}
			montoTerceros = montoTerceros.Add(usado.Monto)
			detalle.ChequesTerceros = append(detalle.ChequesTerceros, usado.Resumen())
		}
		if !montoTerceros.Equal(p.montoTerceros) {
			log.Warn().
				Str("pago_id", pago.ID.String()).
				Str("validado", p.montoTerceros.String()).
				Str("consumido", montoTerceros.String()).
				Msg("pago: monto de cheques de terceros modificado durante el pago")
			p.montoTerceros = montoTerceros
			p.total = p.sumar()
			if !p.total.IsPositive() {
				return errValidacion("el total del pago debe ser mayor a cero")
			}
			pago.MontoChequesTerceros = p.montoTerceros.Add(p.montoRecibidos)
			pago.Total = p.total
		}

		for _, spec := range p.chequesPropios {
			emitido, err := s.cheques.EmitirPropioTx(ctx, tx, op, spec, p.proveedorID, p.fecha, &pago.ID)
			if err != nil {
				return err
			}
			detalle.ChequesPropios = append(detalle.ChequesPropios, emitido.Resumen())
		}

		for _, spec := range p.chequesRecibidos {
			recibido, err := s.cheques.RecibirTerceroTx(ctx, tx, op, spec, *p.clienteID, p.fecha, &pago.ID)
			if err != nil {
				return err
			}
			detalle.ChequesRecibidos = append(detalle.ChequesRecibidos, recibido.Resumen())
		}

		cuenta := &model.MovimientoCuentaCorriente{
			ClienteID:   p.clienteID,
			ProveedorID: p.proveedorID,
			Tipo:        model.CuentaCredito,
			Monto:       p.total,
			Concepto:    model.ConceptoCuentaPago,
			Descripcion: describir(pago.ID, p, len(detalle.ChequesTerceros)+len(detalle.ChequesRecibidos), len(detalle.ChequesPropios)),
			PagoID:      &pago.ID,
			Fecha:       p.fecha,
		}
		if err := s.cuentas.RegistrarMovimientoTx(ctx, tx, op, cuenta); err != nil {
			return err
		}
		pago.MovimientoCuentaID = cuenta.ID

		raw, err := json.Marshal(detalle)
		if err != nil {
			return err
		}
		pago.Detalle = datatypes.JSON(raw)
		return s.repo.Create(ctx, tx, pago)
	})
	if txErr != nil {
		log.Error().Err(txErr).
			Str("entidad", p.entidad.Tipo).
			Str("entidad_id", p.entidad.ID).
			Str("total", p.total.String()).
			Msg("pago: transaccion revertida")
		return nil, pagoFallido(txErr)
	}

	log.Info().Str("pago_id", pago.ID.String()).Str("total", pago.Total.String()).Msg("pago registrado")

	if idemKey != "" {
		if err := s.idem.Confirmar(ctx, idemKey, pago.ID.String(), s.idemTTL); err != nil {
			log.Warn().Err(err).Str("pago_id", pago.ID.String()).Msg("pago: no se pudo confirmar la clave de idempotencia")
		}
	}
	s.publicar(ctx, op, pago, p)

	return s.armarRespuesta(ctx, op, pago, p.entidad, detalle)
}

// validar resolves and checks everything the settlement needs before opening
// the transaction. Own-check number uniqueness is enforced inside it.
func (s *pagoService) validar(ctx context.Context, op dto.Operador, req dto.RegistrarPagoRequest) (*plan, error) {
	p := &plan{
		efectivo:         req.MontoEfectivo.Round(2),
		transferencia:    req.MontoTransferencia.Round(2),
		chequesPropios:   req.ChequesPropios,
		chequesRecibidos: req.ChequesRecibidos,
	}

	proveedorID, err := parseUUIDOpt("proveedor_id", req.ProveedorID)
	if err != nil {
		return nil, err
	}
	clienteID, err := parseUUIDOpt("cliente_id", req.ClienteID)
	if err != nil {
		return nil, err
	}
	campos := map[string]string{}
	if (proveedorID == nil) == (clienteID == nil) {
		campos["entidad"] = "indicar exactamente uno de proveedor_id o cliente_id"
	}
	if p.efectivo.IsNegative() {
		campos["monto_efectivo"] = "no puede ser negativo"
	}
	if p.transferencia.IsNegative() {
		campos["monto_transferencia"] = "no puede ser negativo"
	}
	if clienteID != nil && len(req.ChequesTerceros) > 0 {
		campos["cheques_terceros"] = "solo aplica a pagos a proveedores"
	}
	if clienteID != nil && len(req.ChequesPropios) > 0 {
		campos["cheques_propios"] = "solo aplica a pagos a proveedores"
	}
	if proveedorID != nil && len(req.ChequesRecibidos) > 0 {
		campos["cheques_recibidos"] = "solo aplica a cobros a clientes"
	}
	if len(campos) > 0 {
		return nil, errCampos(campos)
	}

	p.proveedorID, p.clienteID = proveedorID, clienteID
	if proveedorID != nil {
		p.entidad, err = s.cuentas.Entidad(ctx, nil, op, model.EntidadProveedor, *proveedorID)
	} else {
		p.entidad, err = s.cuentas.Entidad(ctx, nil, op, model.EntidadCliente, *clienteID)
	}
	if err != nil {
		return nil, err
	}

	p.fecha = s.opts.ahora()
	if req.Fecha != nil && *req.Fecha != "" {
		if p.fecha, err = parseFecha("fecha", *req.Fecha); err != nil {
			return nil, err
		}
	}
	if p.efectivo.IsPositive() {
		if p.pdv, err = resolverPDV(op, req.PuntoDeVenta); err != nil {
			return nil, err
		}
	}

	vistos := map[uuid.UUID]bool{}
	for i, raw := range req.ChequesTerceros {
		campo := fmt.Sprintf("cheques_terceros[%d]", i)
		id, err := parseUUID(campo, raw)
		if err != nil {
			return nil, err
		}
		if vistos[id] {
			return nil, errCampos(map[string]string{campo: "cheque repetido"})
		}
		vistos[id] = true

		c, err := s.chequeRepo.FindLive(ctx, nil, op.TenantID, id)
		if err != nil {
			if isNotFound(err) {
				return nil, errNoEncontrado("cheque %s no encontrado", id)
			}
			return nil, err
		}
		if c.Tipo != model.ChequeTercero {
			return nil, &Error{Kind: ErrValidacion, Detail: "el cheque " + c.Numero + " no es de terceros",
				Fields: map[string]string{campo: "no es de terceros"}}
		}
		if c.Estado != model.ChequePendiente {
			detalle := "el cheque " + c.Numero + " no esta pendiente (estado " + c.Estado + ")"
			if c.Estado == model.ChequeUsado {
				detalle = "el cheque " + c.Numero + " ya fue usado en otro pago"
			}
			return nil, &Error{Kind: ErrValidacion, Detail: detalle,
				Fields: map[string]string{campo: "estado " + c.Estado}}
		}
		p.terceros = append(p.terceros, *c)
		p.montoTerceros = p.montoTerceros.Add(c.Monto)
	}

	for i, spec := range req.ChequesPropios {
		if err := validarSpecCheque(fmt.Sprintf("cheques_propios[%d]", i), spec.Banco, spec.Numero, spec.Monto, spec.FechaEmision, spec.FechaPago); err != nil {
			return nil, err
		}
		p.montoPropios = p.montoPropios.Add(spec.Monto.Round(2))
	}
	for i, spec := range req.ChequesRecibidos {
		campo := fmt.Sprintf("cheques_recibidos[%d]", i)
		if err := validarSpecCheque(campo, spec.Banco, spec.Numero, spec.Monto, spec.FechaEmision, spec.FechaPago); err != nil {
			return nil, err
		}
		if strings.TrimSpace(spec.Librador) == "" {
			return nil, errCampos(map[string]string{campo + ".librador": "requerido"})
		}
		p.montoRecibidos = p.montoRecibidos.Add(spec.Monto.Round(2))
	}

	p.total = p.sumar()
	if !p.total.IsPositive() {
		return nil, errValidacion("el total del pago debe ser mayor a cero")
	}
	return p, nil
}

func (p *plan) sumar() decimal.Decimal {
	return p.efectivo.Add(p.transferencia).Add(p.montoTerceros).Add(p.montoPropios).Add(p.montoRecibidos)
}

func validarSpecCheque(campo, banco, numero string, monto decimal.Decimal, emision, pago string) error {
	campos := map[string]string{}
	if strings.TrimSpace(banco) == "" {
		campos[campo+".banco"] = "requerido"
	}
	if strings.TrimSpace(numero) == "" {
		campos[campo+".numero"] = "requerido"
	}
	if !monto.IsPositive() {
		campos[campo+".monto"] = "debe ser mayor a cero"
	}
	fp, err := time.ParseInLocation(layoutFecha, pago, time.UTC)
	if err != nil {
		campos[campo+".fecha_pago"] = "fecha invalida, formato AAAA-MM-DD"
	}
	if emision != "" {
		fe, err2 := time.ParseInLocation(layoutFecha, emision, time.UTC)
		if err2 != nil {
			campos[campo+".fecha_emision"] = "fecha invalida, formato AAAA-MM-DD"
		} else if err == nil && fp.Before(fe) {
			campos[campo+".fecha_pago"] = "no puede ser anterior a la fecha de emision"
		}
	}
	if len(campos) > 0 {
		return errCampos(campos)
	}
	return nil
}

// ── Obtener ───────────────────────────────────────────────────────────────────

func (s *pagoService) Obtener(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.PagoResponse, error) {
	pago, err := s.repo.FindByID(ctx, op.TenantID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errNoEncontrado("pago %s no encontrado", id)
		}
		return nil, err
	}
	var detalle model.DetallePago
	if len(pago.Detalle) > 0 {
		if err := json.Unmarshal(pago.Detalle, &detalle); err != nil {
			return nil, fmt.Errorf("pago %s: detalle: %w", id, err)
		}
	}
	var ent *dto.EntidadResumen
	if pago.ProveedorID != nil {
		ent, err = s.cuentas.Entidad(ctx, nil, op, model.EntidadProveedor, *pago.ProveedorID)
	} else {
		ent, err = s.cuentas.Entidad(ctx, nil, op, model.EntidadCliente, *pago.ClienteID)
	}
	if err != nil {
		return nil, err
	}
	return s.armarRespuesta(ctx, op, pago, ent, detalle)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *pagoService) publicar(ctx context.Context, op dto.Operador, pago *model.Pago, p *plan) {
	if s.publisher == nil {
		return
	}
	evt := dto.PagoRegistradoEvento{
		PagoID:   pago.ID.String(),
		TenantID: op.TenantID,
		Entidad:  *p.entidad,
		Fecha:    formatFecha(pago.Fecha),
		Total:    pago.Total,
		Detalle:  describir(pago.ID, p, len(p.terceros)+len(p.chequesRecibidos), len(p.chequesPropios)),
	}
	if err := s.publisher.PagoRegistrado(ctx, evt); err != nil {
		log.Error().Err(err).Str("pago_id", evt.PagoID).Msg("pago: no se pudo publicar el evento")
	}
}

func (s *pagoService) armarRespuesta(ctx context.Context, op dto.Operador, pago *model.Pago, ent *dto.EntidadResumen, detalle model.DetallePago) (*dto.PagoResponse, error) {
	id, _ := uuid.Parse(ent.ID)
	saldo, err := s.cuentas.Saldo(ctx, op, ent.Tipo, id)
	if err != nil {
		return nil, err
	}
	return &dto.PagoResponse{
		ID:                      pago.ID.String(),
		Entidad:                 *ent,
		Fecha:                   formatFecha(pago.Fecha),
		Observacion:             pago.Observacion,
		MontoEfectivo:           pago.MontoEfectivo,
		MontoTransferencia:      pago.MontoTransferencia,
		ReferenciaTransferencia: pago.ReferenciaTransferencia,
		MontoChequesTerceros:    pago.MontoChequesTerceros,
		MontoChequesPropios:     pago.MontoChequesPropios,
		Total:                   pago.Total,
		MovimientoCajaID:        idStr(pago.MovimientoCajaID),
		MovimientoCuentaID:      pago.MovimientoCuentaID.String(),
		ChequesTerceros:         orEmpty(detalle.ChequesTerceros),
		ChequesPropios:          orEmpty(detalle.ChequesPropios),
		ChequesRecibidos:        orEmpty(detalle.ChequesRecibidos),
		SaldoCuenta:             saldo,
		CreatedAt:               formatTS(pago.CreatedAt),
	}, nil
}

func orEmpty(in []model.ChequeResumen) []model.ChequeResumen {
	if in == nil {
		return []model.ChequeResumen{}
	}
	return in
}

func describir(id uuid.UUID, p *plan, nTerceros, nPropios int) string {
	partes := []string{}
	if p.efectivo.IsPositive() {
		partes = append(partes, "efectivo "+p.efectivo.StringFixed(2))
	}
	if p.transferencia.IsPositive() {
		partes = append(partes, "transferencia "+p.transferencia.StringFixed(2))
	}
	if nTerceros > 0 {
		partes = append(partes, fmt.Sprintf("%d cheque(s) de terceros", nTerceros))
	}
	if nPropios > 0 {
		partes = append(partes, fmt.Sprintf("%d cheque(s) propios", nPropios))
	}
	return fmt.Sprintf("Pago %s: %s", corto(id), strings.Join(partes, ", "))
}

func corto(id uuid.UUID) string { return id.String()[:8] }
