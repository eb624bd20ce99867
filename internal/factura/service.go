package factura

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/platform/httpx"
	"github.com/apdis/apdis-manager/internal/validation"
)

// Service orchestrates invoice creation and lookups against the remote APIs.
type Service struct {
	facturas *gateway.Facturas
	catalog  *gateway.Catalog
	emitter  *audit.Emitter
	logger   *slog.Logger
}

// NewService constructs the invoice service.
func NewService(facturas *gateway.Facturas, catalog *gateway.Catalog, emitter *audit.Emitter, logger *slog.Logger) *Service {
	return &Service{facturas: facturas, catalog: catalog, emitter: emitter, logger: logger}
}

// Crear validates the draft and persists it as two dependent remote writes:
// the header first (with a zero placeholder total), then the full line list
// as one batch tagged with the generated id.
//
// The two writes are not atomic. When the detail batch fails the header is
// NOT rolled back — the invoice API offers no transaction and the observed
// behavior of the system is to leave the orphan for an administrative fix.
// The orphan is logged at Error level so the operator can find it.
func (s *Service) Crear(ctx context.Context, form validation.FacturaForm) (int, error) {
	if errs := validation.Struct(form); errs != nil {
		return 0, validation.Errors(errs)
	}

	productos, err := s.catalog.Activos(ctx)
	if err != nil {
		return 0, fmt.Errorf("cargar catálogo: %w", err)
	}

	draft := NewDraft(productos)
	draft.Header = Header{
		IDCliente:     form.Header.IDCliente,
		TipoPago:      form.Header.TipoPago,
		EstadoFactura: form.Header.EstadoFactura,
	}
	draft.Lineas = draft.Lineas[:0]
	for _, d := range form.Detalles {
		draft.Lineas = append(draft.Lineas, Linea{IDProducto: d.IDProducto, Cantidad: d.Cantidad})
	}
	if errs := draft.Validate(); errs != nil {
		return 0, validation.Errors(errs)
	}

	draft.markSubmitting()

	header := gateway.FacturaHeaderInput{
		IDCliente:     draft.Header.IDCliente,
		TipoPago:      draft.Header.TipoPago,
		EstadoFactura: draft.Header.EstadoFactura,
		MontoTotal:    0,
	}
	created, err := s.facturas.CreateHeader(ctx, header)
	if err != nil {
		draft.markFailed(map[string]string{"general": "No se pudo crear la cabecera de la factura."})
		return 0, err
	}
	if created == nil || created.IDFactura == 0 {
		draft.markFailed(map[string]string{"general": "No se pudo crear la cabecera de la factura."})
		return 0, fmt.Errorf("%w: header created without id", httpx.ErrUpstream)
	}

	batch := gateway.DetalleBatch{IDFactura: created.IDFactura, Productos: make([]gateway.DetalleInput, 0, len(draft.Lineas))}
	for _, l := range draft.Lineas {
		batch.Productos = append(batch.Productos, gateway.DetalleInput{IDProducto: l.IDProducto, Cantidad: l.Cantidad})
	}
	if err := s.facturas.CreateDetalles(ctx, batch); err != nil {
		// Data-integrity gap: the header exists remotely with no lines and a
		// zero total. There is no compensating delete in the observed system.
		s.logger.Error("detalle batch failed, orphan header persisted",
			slog.Int("id_factura", created.IDFactura),
			slog.Any("error", err))
		draft.markFailed(map[string]string{"general": "Ocurrió un error al guardar la factura."})
		return 0, fmt.Errorf("guardar detalles de la factura %d: %w", created.IDFactura, err)
	}

	draft.markCommitted()

	// The remote recomputes the total from the batch. A mismatch is a known
	// risk of the split write, not a failure.
	if persisted, err := s.facturas.Get(ctx, created.IDFactura); err != nil {
		s.logger.Warn("verificar total", slog.Int("id_factura", created.IDFactura), slog.Any("error", err))
	} else if !persisted.MontoTotal.Equal(draft.Total()) {
		s.logger.Warn("total remoto difiere del calculado",
			slog.Int("id_factura", created.IDFactura),
			slog.String("total_local", draft.Total().String()),
			slog.String("total_remoto", persisted.MontoTotal.String()))
	}

	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionCreate,
		Tabla:      "facturas",
		IDRegistro: created.IDFactura,
		Details: map[string]any{
			"header":   header,
			"detalles": batch.Productos,
			"total":    draft.Total().String(),
		},
	})

	return created.IDFactura, nil
}

// Detalles fetches the resolved lines of one invoice.
func (s *Service) Detalles(ctx context.Context, facturaID int) ([]gateway.DetalleFactura, error) {
	return s.facturas.Detalles(ctx, facturaID)
}

// Eliminar removes an invoice together with its lines.
func (s *Service) Eliminar(ctx context.Context, id int) error {
	if err := s.facturas.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionDelete,
		Tabla:      "facturas",
		IDRegistro: id,
		Details:    map[string]any{"message": fmt.Sprintf("Factura con id %d eliminada.", id)},
	})
	return nil
}

// Productos exposes the cached active catalog for the picker.
func (s *Service) Productos(ctx context.Context) ([]gateway.Producto, error) {
	return s.catalog.Activos(ctx)
}
