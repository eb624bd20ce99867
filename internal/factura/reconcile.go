package factura

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/observability"
)

// DeletablePolicy controls how the list view derives the deletable flag.
type DeletablePolicy string

const (
	// DeletableAlways marks every row deletable, matching the latest
	// observed revision of the system.
	DeletableAlways DeletablePolicy = "always"
	// DeletableDerived keeps rows the AR system still tracks as pending
	// non-deletable, matching earlier revisions.
	DeletableDerived DeletablePolicy = "derived"
)

// Reconciler keeps displayed invoice statuses consistent with the
// accounts-receivable view of outstanding credit. It runs once per list
// load: credit invoices still marked pending locally but absent from the
// debtor list are treated as paid off.
type Reconciler struct {
	facturas *gateway.Facturas
	clientes *gateway.Clientes
	deudores *gateway.Deudores
	emitter  *audit.Emitter
	metrics  *observability.Metrics
	logger   *slog.Logger
	policy   DeletablePolicy
}

// NewReconciler constructs the job.
func NewReconciler(
	facturas *gateway.Facturas,
	clientes *gateway.Clientes,
	deudores *gateway.Deudores,
	emitter *audit.Emitter,
	metrics *observability.Metrics,
	logger *slog.Logger,
	policy DeletablePolicy,
) *Reconciler {
	if policy == "" {
		policy = DeletableAlways
	}
	return &Reconciler{
		facturas: facturas,
		clientes: clientes,
		deudores: deudores,
		emitter:  emitter,
		metrics:  metrics,
		logger:   logger,
		policy:   policy,
	}
}

// Run fetches invoices, clients and the debtor list in parallel, corrects
// newly paid-off credit invoices, and returns the corrected view together
// with the write-back outcomes. The view is already corrected even when a
// write-back fails: a later pass will retry the remote write.
func (r *Reconciler) Run(ctx context.Context) (ListResult, error) {
	var (
		facturas []gateway.Factura
		clientes []gateway.Cliente
		deudores []gateway.Deudor
		deudErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facturas, err = r.facturas.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clientes, err = r.clientes.List(gctx)
		return err
	})
	g.Go(func() error {
		// A debtor-list failure must not block the page; stale statuses are
		// preferred. Capture the error instead of failing the group.
		deudores, deudErr = r.deudores.List(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}

	result := ListResult{}

	var pending map[int]struct{}
	if deudErr != nil {
		r.logger.Warn("deudores unavailable, skipping invoice status sync", slog.Any("error", deudErr))
		if r.metrics != nil {
			r.metrics.ReconcileSkipped.Inc()
		}
		result.SyncSkipped = true
	} else {
		pending = gateway.PendingSet(deudores)
	}

	var corrected []gateway.Factura
	if !result.SyncSkipped {
		for i := range facturas {
			f := &facturas[i]
			if f.TipoPago != gateway.PagoCredito || f.EstadoFactura != gateway.EstadoPendiente {
				continue
			}
			if _, still := pending[f.IDFactura]; still {
				continue
			}
			// Paid off according to AR. Correct the view now; write back in
			// the background.
			f.EstadoFactura = gateway.EstadoPagado
			corrected = append(corrected, *f)
		}
	}

	result.Writebacks = r.writeBack(ctx, corrected)

	byID := make(map[int]*gateway.Cliente, len(clientes))
	for i := range clientes {
		byID[clientes[i].IDCliente] = &clientes[i]
	}

	views := make([]View, 0, len(facturas))
	for _, f := range facturas {
		views = append(views, View{
			Factura:   f,
			Cliente:   byID[f.IDCliente],
			Deletable: r.deletable(f, pending),
		})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].IDFactura > views[j].IDFactura
	})
	result.Facturas = views
	return result, nil
}

// writeBack PUTs every corrected record concurrently. Partial failures are
// logged individually; the corrected local view stands regardless.
func (r *Reconciler) writeBack(ctx context.Context, corrected []gateway.Factura) []WritebackResult {
	if len(corrected) == 0 {
		return nil
	}
	results := make([]WritebackResult, len(corrected))
	var wg sync.WaitGroup
	for i, f := range corrected {
		wg.Add(1)
		go func(i int, f gateway.Factura) {
			defer wg.Done()
			err := r.facturas.Update(ctx, f.IDFactura, f)
			results[i] = WritebackResult{IDFactura: f.IDFactura, Err: err}
			if err != nil {
				r.logger.Warn("status write-back failed",
					slog.Int("id_factura", f.IDFactura),
					slog.Any("error", err))
				if r.metrics != nil {
					r.metrics.WritebackFailures.Inc()
				}
				return
			}
			if r.metrics != nil {
				r.metrics.ReconcileCorrections.Inc()
			}
			r.emitter.Emit(ctx, audit.Entry{
				Accion:     audit.AccionUpdate,
				Tabla:      "facturas",
				IDRegistro: f.IDFactura,
				Details: map[string]any{
					"estado_factura": gateway.EstadoPagado,
					"trigger":        "Sync con Cuentas por Cobrar",
				},
			})
		}(i, f)
	}
	wg.Wait()
	return results
}

func (r *Reconciler) deletable(f gateway.Factura, pending map[int]struct{}) bool {
	if r.policy == DeletableAlways {
		return true
	}
	if pending == nil {
		// Debtor list unavailable; err on the safe side.
		return false
	}
	_, still := pending[f.IDFactura]
	return !still
}
