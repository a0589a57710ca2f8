package service

import (
	"context"
	"strings"
	"time"

	"corralon/internal/dto"
	"corralon/internal/model"
	"corralon/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type ChequeService interface {
	Crear(ctx context.Context, op dto.Operador, req dto.ChequeRequest) (*dto.ChequeResponse, error)
	Actualizar(ctx context.Context, op dto.Operador, id uuid.UUID, req dto.ChequeRequest) (*dto.ChequeResponse, error)
	Transicionar(ctx context.Context, op dto.Operador, id uuid.UUID, estado string) (*dto.ChequeResponse, error)
	// ForzarEstado is the audited admin override; it bypasses the state machine.
	ForzarEstado(ctx context.Context, op dto.Operador, id uuid.UUID, req dto.CorreccionChequeRequest) (*dto.ChequeResponse, error)
	Eliminar(ctx context.Context, op dto.Operador, id uuid.UUID) error
	Restaurar(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.ChequeResponse, error)
	Purgar(ctx context.Context, op dto.Operador, id uuid.UUID) error
	Listar(ctx context.Context, op dto.Operador, filtro dto.ChequeFiltro) (*dto.ChequeListResponse, error)
	ObtenerPorID(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.ChequeResponse, error)
	ConsumirTercero(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.ChequeResponse, error)
	PorVencer(ctx context.Context, tenantID string, dias int) ([]model.Cheque, error)

	// Called by PagoService inside its transaction.
	ConsumirTerceroTx(ctx context.Context, tx *gorm.DB, op dto.Operador, id uuid.UUID, pagoID *uuid.UUID) (*model.Cheque, error)
	EmitirPropioTx(ctx context.Context, tx *gorm.DB, op dto.Operador, spec dto.ChequePropioSpec, proveedorID *uuid.UUID, fecha time.Time, pagoID *uuid.UUID) (*model.Cheque, error)
	RecibirTerceroTx(ctx context.Context, tx *gorm.DB, op dto.Operador, spec dto.ChequeRecibidoSpec, clienteID uuid.UUID, fecha time.Time, pagoID *uuid.UUID) (*model.Cheque, error)
}

type chequeService struct {
	repo      repository.ChequeRepository
	entidades repository.EntidadRepository
	opts      Opciones
}

func NewChequeService(repo repository.ChequeRepository, entidades repository.EntidadRepository, opts Opciones) ChequeService {
	return &chequeService{repo: repo, entidades: entidades, opts: opts}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *chequeService) Crear(ctx context.Context, op dto.Operador, req dto.ChequeRequest) (*dto.ChequeResponse, error) {
	c, err := s.armarCheque(ctx, nil, op, req)
	if err != nil {
		return nil, err
	}
	c.Estado = model.ChequePendiente

	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		return s.crearTx(ctx, tx, op, c, model.ViaAlta)
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, op, c.ID)
}

// crearTx enforces number uniqueness among live checks, inserts c and writes
// its first audit event. The partial unique index backs the pre-check.
func (s *chequeService) crearTx(ctx context.Context, tx *gorm.DB, op dto.Operador, c *model.Cheque, via string) error {
	existe, err := s.repo.ExisteNumero(ctx, tx, op.TenantID, c.Tipo, c.Banco, c.Numero, uuid.Nil)
	if err != nil {
		return err
	}
	if existe {
		return errNumeroDuplicado(c)
	}
	c.TenantID = op.TenantID
	if err := s.repo.Create(ctx, tx, c); err != nil {
		if isDuplicate(err) {
			return errNumeroDuplicado(c)
		}
		return err
	}
	return s.repo.CreateEvento(ctx, tx, &model.ChequeEvento{
		ChequeID:    c.ID,
		EstadoNuevo: c.Estado,
		Via:         via,
		UsuarioID:   op.UsuarioID,
	})
}

func errNumeroDuplicado(c *model.Cheque) *Error {
	return &Error{
		Kind:   ErrValidacion,
		Detail: "ya existe un cheque " + c.Tipo + " " + c.Banco + " #" + c.Numero,
		Fields: map[string]string{"numero": "duplicado"},
	}
}

// armarCheque validates req and returns an unsaved check. tx is used for the
// entity lookups so the call is safe inside a transaction.
func (s *chequeService) armarCheque(ctx context.Context, tx *gorm.DB, op dto.Operador, req dto.ChequeRequest) (*model.Cheque, error) {
	campos := map[string]string{}

	tipo := strings.TrimSpace(req.Tipo)
	if tipo != model.ChequePropio && tipo != model.ChequeTercero {
		campos["tipo"] = "debe ser propio o tercero"
	}
	banco := strings.TrimSpace(req.Banco)
	if banco == "" {
		campos["banco"] = "requerido"
	}
	numero := strings.TrimSpace(req.Numero)
	if numero == "" {
		campos["numero"] = "requerido"
	}
	if !req.Monto.IsPositive() {
		campos["monto"] = "debe ser mayor a cero"
	}
	emision, errEmision := time.ParseInLocation(layoutFecha, req.FechaEmision, time.UTC)
	if errEmision != nil {
		campos["fecha_emision"] = "fecha invalida, formato AAAA-MM-DD"
	}
	pago, errPago := time.ParseInLocation(layoutFecha, req.FechaPago, time.UTC)
	if errPago != nil {
		campos["fecha_pago"] = "fecha invalida, formato AAAA-MM-DD"
	}
	if errEmision == nil && errPago == nil && pago.Before(emision) {
		campos["fecha_pago"] = "no puede ser anterior a la fecha de emision"
	}

	proveedorID, err := parseUUIDOpt("proveedor_id", req.ProveedorID)
	if err != nil {
		campos["proveedor_id"] = "uuid invalido"
	}
	clienteID, err := parseUUIDOpt("cliente_id", req.ClienteID)
	if err != nil {
		campos["cliente_id"] = "uuid invalido"
	}

	switch tipo {
	case model.ChequePropio:
		if proveedorID != nil && !blank(req.Destinatario) {
			campos["destinatario"] = "indicar proveedor o destinatario, no ambos"
		}
		if clienteID != nil {
			campos["cliente_id"] = "no aplica a cheques propios"
		}
		if !blank(req.Librador) {
			campos["librador"] = "no aplica a cheques propios"
		}
	case model.ChequeTercero:
		if blank(req.Librador) {
			campos["librador"] = "requerido para cheques de terceros"
		}
		if proveedorID != nil || !blank(req.Destinatario) {
			campos["proveedor_id"] = "no aplica a cheques de terceros"
		}
	}
	if len(campos) > 0 {
		return nil, errCampos(campos)
	}

	if proveedorID != nil {
		if _, err := s.entidades.FindProveedor(ctx, tx, op.TenantID, *proveedorID); err != nil {
			if isNotFound(err) {
				return nil, errNoEncontrado("proveedor %s no encontrado", *proveedorID)
			}
			return nil, err
		}
	}
	if clienteID != nil {
		if _, err := s.entidades.FindCliente(ctx, tx, op.TenantID, *clienteID); err != nil {
			if isNotFound(err) {
				return nil, errNoEncontrado("cliente %s no encontrado", *clienteID)
			}
			return nil, err
		}
	}

	c := &model.Cheque{
		Tipo:         tipo,
		Banco:        banco,
		Numero:       numero,
		Monto:        req.Monto.Round(2),
		FechaEmision: emision,
		FechaPago:    pago,
		ProveedorID:  proveedorID,
		ClienteID:    clienteID,
		Observacion:  req.Observacion,
	}
	if !blank(req.Destinatario) {
		d := strings.TrimSpace(*req.Destinatario)
		c.Destinatario = &d
	}
	if !blank(req.Librador) {
		l := strings.TrimSpace(*req.Librador)
		c.Librador = &l
	}
	return c, nil
}

// ── Actualizar ────────────────────────────────────────────────────────────────
// Edits non-status fields. Amount and direction are frozen once a settlement
// references the check.

func (s *chequeService) Actualizar(ctx context.Context, op dto.Operador, id uuid.UUID, req dto.ChequeRequest) (*dto.ChequeResponse, error) {
	nuevo, err := s.armarCheque(ctx, nil, op, req)
	if err != nil {
		return nil, err
	}

	// The frozen-field rule is checked against the locked row, so an edit
	// queued behind a settlement sees the pago_id that settlement wrote.
	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		actual, err := s.repo.FindLiveForUpdate(ctx, tx, op.TenantID, id)
		if err != nil {
			if isNotFound(err) {
				return errNoEncontrado("cheque %s no encontrado", id)
			}
			return err
		}
		if actual.PagoID != nil && (!nuevo.Monto.Equal(actual.Monto) || nuevo.Tipo != actual.Tipo) {
			return errPrecondicion("el cheque forma parte de un pago: monto y tipo no se pueden modificar")
		}
		if nuevo.Tipo != actual.Tipo && actual.Estado != model.ChequePendiente {
			return errPrecondicion("solo se puede cambiar el tipo de un cheque pendiente")
		}

		nuevo.ID = actual.ID
		nuevo.TenantID = actual.TenantID
		nuevo.Estado = actual.Estado
		nuevo.PagoID = actual.PagoID

		existe, err := s.repo.ExisteNumero(ctx, tx, op.TenantID, nuevo.Tipo, nuevo.Banco, nuevo.Numero, nuevo.ID)
		if err != nil {
			return err
		}
		if existe {
			return errNumeroDuplicado(nuevo)
		}
		if err := s.repo.Update(ctx, tx, nuevo); err != nil {
			if isDuplicate(err) {
				return errNumeroDuplicado(nuevo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, op, id)
}

// ── Transicionar ──────────────────────────────────────────────────────────────
// Guarded path. The status write is a compare-and-swap on the status read
// here, so a concurrent change makes this call fail with ErrConflicto.

func (s *chequeService) Transicionar(ctx context.Context, op dto.Operador, id uuid.UUID, estado string) (resp *dto.ChequeResponse, err error) {
	ctx, span := startSpan(ctx, "ChequeService.Transicionar",
		attribute.String("cheque.id", id.String()), attribute.String("cheque.estado", estado))
	defer func() { endSpan(span, err) }()

	if !model.EstadoValido(estado) {
		return nil, errCampos(map[string]string{"estado": "estado desconocido"})
	}
	c, err := s.buscarVivo(ctx, nil, op, id)
	if err != nil {
		return nil, err
	}
	if !model.TransicionPermitida(c.Tipo, c.Estado, estado) {
		return nil, errTransicion(c.Tipo, c.Estado, estado)
	}

	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		ok, err := s.repo.CambiarEstado(ctx, tx, op.TenantID, id, c.Tipo, c.Estado, estado, nil)
		if err != nil {
			return err
		}
		if !ok {
			return errConflicto("el cheque %s cambio de estado durante la operacion", c.Numero)
		}
		anterior := c.Estado
		return s.repo.CreateEvento(ctx, tx, &model.ChequeEvento{
			ChequeID:       id,
			EstadoAnterior: &anterior,
			EstadoNuevo:    estado,
			Via:            model.ViaTransicion,
			UsuarioID:      op.UsuarioID,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, op, id)
}

// ── ForzarEstado ──────────────────────────────────────────────────────────────

func (s *chequeService) ForzarEstado(ctx context.Context, op dto.Operador, id uuid.UUID, req dto.CorreccionChequeRequest) (resp *dto.ChequeResponse, err error) {
	ctx, span := startSpan(ctx, "ChequeService.ForzarEstado", attribute.String("cheque.id", id.String()))
	defer func() { endSpan(span, err) }()

	campos := map[string]string{}
	if !model.EstadoValido(req.Estado) {
		campos["estado"] = "estado desconocido"
	}
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		campos["motivo"] = "requerido"
	}
	if len(campos) > 0 {
		return nil, errCampos(campos)
	}

	c, err := s.buscarVivo(ctx, nil, op, id)
	if err != nil {
		return nil, err
	}
	anterior := c.Estado

	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		if err := s.repo.SetEstado(ctx, tx, op.TenantID, id, req.Estado); err != nil {
			return err
		}
		return s.repo.CreateEvento(ctx, tx, &model.ChequeEvento{
			ChequeID:       id,
			EstadoAnterior: &anterior,
			EstadoNuevo:    req.Estado,
			Via:            model.ViaCorreccion,
			Motivo:         &motivo,
			UsuarioID:      op.UsuarioID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Warn().
		Str("cheque_id", id.String()).
		Str("estado_anterior", anterior).
		Str("estado_nuevo", req.Estado).
		Str("usuario_id", op.UsuarioID.String()).
		Str("motivo", motivo).
		Msg("cheque: estado forzado por correccion manual")

	return s.ObtenerPorID(ctx, op, id)
}

// ── Eliminar / Restaurar / Purgar ─────────────────────────────────────────────

func (s *chequeService) Eliminar(ctx context.Context, op dto.Operador, id uuid.UUID) error {
	if _, err := s.buscarVivo(ctx, nil, op, id); err != nil {
		return err
	}
	ahora := s.opts.ahora()
	return s.repo.SetDeletedAt(ctx, nil, op.TenantID, id, &ahora)
}

func (s *chequeService) Restaurar(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.ChequeResponse, error) {
	c, err := s.repo.FindByID(ctx, nil, op.TenantID, id)
	if err != nil || c.DeletedAt == nil {
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		return nil, errNoEncontrado("no existe un cheque eliminado con id %s", id)
	}

	err = runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		existe, err := s.repo.ExisteNumero(ctx, tx, op.TenantID, c.Tipo, c.Banco, c.Numero, c.ID)
		if err != nil {
			return err
		}
		if existe {
			return errConflicto("otro cheque activo ya usa el numero %s de %s", c.Numero, c.Banco)
		}
		if err := s.repo.SetDeletedAt(ctx, tx, op.TenantID, id, nil); err != nil {
			if isDuplicate(err) {
				return errConflicto("otro cheque activo ya usa el numero %s de %s", c.Numero, c.Banco)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, op, id)
}

// Purgar physically removes a soft-deleted check that no settlement or
// current-account movement references.
func (s *chequeService) Purgar(ctx context.Context, op dto.Operador, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, nil, op.TenantID, id)
	if err != nil {
		if isNotFound(err) {
			return errNoEncontrado("cheque %s no encontrado", id)
		}
		return err
	}
	if c.DeletedAt == nil {
		return errPrecondicion("solo se pueden purgar cheques eliminados")
	}
	if c.PagoID != nil {
		return errPrecondicion("el cheque esta referenciado por un pago")
	}

	return runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		ref, err := s.repo.TieneMovimientosCuenta(ctx, tx, op.TenantID, id)
		if err != nil {
			return err
		}
		if ref {
			return errPrecondicion("el cheque esta referenciado por movimientos de cuenta corriente")
		}
		return s.repo.Purgar(ctx, tx, op.TenantID, id)
	})
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *chequeService) Listar(ctx context.Context, op dto.Operador, filtro dto.ChequeFiltro) (*dto.ChequeListResponse, error) {
	offset := filtro.Normalizar()
	q := repository.ChequeQuery{
		TenantID:          op.TenantID,
		Q:                 filtro.Q,
		Tipo:              filtro.Tipo,
		Estado:            filtro.Estado,
		IncluirEliminados: filtro.IncluirEliminados,
		Offset:            offset,
		Limit:             filtro.Limit,
	}
	if filtro.ProveedorID != "" {
		id, err := parseUUID("proveedor_id", filtro.ProveedorID)
		if err != nil {
			return nil, err
		}
		q.ProveedorID = &id
	}
	if filtro.ClienteID != "" {
		id, err := parseUUID("cliente_id", filtro.ClienteID)
		if err != nil {
			return nil, err
		}
		q.ClienteID = &id
	}
	if filtro.Desde != "" {
		t, err := parseFecha("desde", filtro.Desde)
		if err != nil {
			return nil, err
		}
		q.Desde = &t
	}
	if filtro.Hasta != "" {
		t, err := parseFecha("hasta", filtro.Hasta)
		if err != nil {
			return nil, err
		}
		q.Hasta = &t
	}

	cheques, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &dto.ChequeListResponse{
		Data:  make([]dto.ChequeResponse, 0, len(cheques)),
		Total: total,
		Page:  filtro.Page,
		Limit: filtro.Limit,
	}
	for i := range cheques {
		resp.Data = append(resp.Data, s.toResponse(&cheques[i], nil))
	}
	return resp, nil
}

// ObtenerPorID also returns soft-deleted checks, flagged, so they can be restored.
func (s *chequeService) ObtenerPorID(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.ChequeResponse, error) {
	c, err := s.repo.FindByID(ctx, nil, op.TenantID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errNoEncontrado("cheque %s no encontrado", id)
		}
		return nil, err
	}
	eventos, err := s.repo.ListEventos(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(c, eventos)
	return &resp, nil
}

// PorVencer lists pending own checks maturing within the next dias days.
func (s *chequeService) PorVencer(ctx context.Context, tenantID string, dias int) ([]model.Cheque, error) {
	hoy := truncDia(s.opts.ahora())
	return s.repo.ListPendientesPorVencer(ctx, tenantID, model.ChequePropio, hoy, hoy.AddDate(0, 0, dias+1))
}

// ── Consumo / emision (orquestador) ──────────────────────────────────────────

func (s *chequeService) ConsumirTercero(ctx context.Context, op dto.Operador, id uuid.UUID) (*dto.ChequeResponse, error) {
	err := runTx(ctx, s.repo.DB(), s.opts.TxTimeout, func(tx *gorm.DB) error {
		_, err := s.ConsumirTerceroTx(ctx, tx, op, id, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.ObtenerPorID(ctx, op, id)
}

// ConsumirTerceroTx moves a pending third-party check to usado. The update
// only matches while the row still is (tercero, pendiente), so of two racing
// callers exactly one wins; the other gets ErrConflicto.
func (s *chequeService) ConsumirTerceroTx(ctx context.Context, tx *gorm.DB, op dto.Operador, id uuid.UUID, pagoID *uuid.UUID) (*model.Cheque, error) {
	ok, err := s.repo.CambiarEstado(ctx, tx, op.TenantID, id, model.ChequeTercero, model.ChequePendiente, model.ChequeUsado, pagoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		c, err := s.buscarVivo(ctx, tx, op, id)
		if err != nil {
			return nil, err
		}
		if c.Tipo != model.ChequeTercero {
			return nil, errValidacion("el cheque %s no es de terceros", c.Numero)
		}
		return nil, errConflicto("el cheque %s ya no esta pendiente (estado %s)", c.Numero, c.Estado)
	}

	pendiente := model.ChequePendiente
	if err := s.repo.CreateEvento(ctx, tx, &model.ChequeEvento{
		ChequeID:       id,
		EstadoAnterior: &pendiente,
		EstadoNuevo:    model.ChequeUsado,
		Via:            model.ViaPago,
		UsuarioID:      op.UsuarioID,
	}); err != nil {
		return nil, err
	}
	return s.repo.FindLive(ctx, tx, op.TenantID, id)
}

// EmitirPropioTx issues a pending own check to the provider being paid.
func (s *chequeService) EmitirPropioTx(ctx context.Context, tx *gorm.DB, op dto.Operador, spec dto.ChequePropioSpec, proveedorID *uuid.UUID, fecha time.Time, pagoID *uuid.UUID) (*model.Cheque, error) {
	emision := formatFecha(fecha)
	if spec.FechaEmision != "" {
		emision = spec.FechaEmision
	}
	c, err := s.armarCheque(ctx, tx, op, dto.ChequeRequest{
		Tipo:         model.ChequePropio,
		Banco:        spec.Banco,
		Numero:       spec.Numero,
		Monto:        spec.Monto,
		FechaEmision: emision,
		FechaPago:    spec.FechaPago,
		ProveedorID:  idStr(proveedorID),
		Observacion:  spec.Observacion,
	})
	if err != nil {
		return nil, err
	}
	c.Estado = model.ChequePendiente
	c.PagoID = pagoID
	if err := s.crearTx(ctx, tx, op, c, model.ViaPago); err != nil {
		return nil, err
	}
	return c, nil
}

// RecibirTerceroTx registers a third-party check handed over by a client.
func (s *chequeService) RecibirTerceroTx(ctx context.Context, tx *gorm.DB, op dto.Operador, spec dto.ChequeRecibidoSpec, clienteID uuid.UUID, fecha time.Time, pagoID *uuid.UUID) (*model.Cheque, error) {
	emision := formatFecha(fecha)
	if spec.FechaEmision != "" {
		emision = spec.FechaEmision
	}
	cli := clienteID.String()
	librador := spec.Librador
	c, err := s.armarCheque(ctx, tx, op, dto.ChequeRequest{
		Tipo:         model.ChequeTercero,
		Banco:        spec.Banco,
		Numero:       spec.Numero,
		Monto:        spec.Monto,
		FechaEmision: emision,
		FechaPago:    spec.FechaPago,
		ClienteID:    &cli,
		Librador:     &librador,
		Observacion:  spec.Observacion,
	})
	if err != nil {
		return nil, err
	}
	c.Estado = model.ChequePendiente
	c.PagoID = pagoID
	if err := s.crearTx(ctx, tx, op, c, model.ViaPago); err != nil {
		return nil, err
	}
	return c, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *chequeService) buscarVivo(ctx context.Context, tx *gorm.DB, op dto.Operador, id uuid.UUID) (*model.Cheque, error) {
	c, err := s.repo.FindLive(ctx, tx, op.TenantID, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errNoEncontrado("cheque %s no encontrado", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *chequeService) toResponse(c *model.Cheque, eventos []model.ChequeEvento) dto.ChequeResponse {
	hoy := s.opts.ahora()
	r := dto.ChequeResponse{
		ID:           c.ID.String(),
		Tipo:         c.Tipo,
		Banco:        c.Banco,
		Numero:       c.Numero,
		Monto:        c.Monto,
		FechaEmision: formatFecha(c.FechaEmision),
		FechaPago:    formatFecha(c.FechaPago),
		Estado:       c.Estado,
		ProveedorID:  idStr(c.ProveedorID),
		Destinatario: c.Destinatario,
		ClienteID:    idStr(c.ClienteID),
		Librador:     c.Librador,
		Observacion:  c.Observacion,
		PagoID:       idStr(c.PagoID),
		Vencido:      model.Vencido(c, hoy),
		VencidoLegal: model.VencidoLegal(c, hoy, s.opts.plazoLegal()),
		Eliminado:    c.DeletedAt != nil,
		CreatedAt:    formatTS(c.CreatedAt),
	}
	if c.Proveedor != nil {
		r.ProveedorNombre = &c.Proveedor.RazonSocial
	}
	if c.Cliente != nil {
		r.ClienteNombre = &c.Cliente.Nombre
	}
	for _, e := range eventos {
		r.Eventos = append(r.Eventos, dto.ChequeEventoResponse{
			EstadoAnterior: e.EstadoAnterior,
			EstadoNuevo:    e.EstadoNuevo,
			Via:            e.Via,
			Motivo:         e.Motivo,
			UsuarioID:      e.UsuarioID.String(),
			Fecha:          formatTS(e.CreatedAt),
		})
	}
	return r
}
