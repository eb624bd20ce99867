package factura_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/factura"
	"github.com/apdis/apdis-manager/internal/gateway"
)

type reconcileFixture struct {
	reconciler *factura.Reconciler

	mu   sync.Mutex
	puts map[int]gateway.Factura
}

// newReconcileFixture serves three invoices: 1 credit+pending, 2 credit+
// pending, 3 cash+pending. The AR debtor list still tracks invoice 2 only.
func newReconcileFixture(t *testing.T, deudoresStatus int, policy factura.DeletablePolicy) *reconcileFixture {
	t.Helper()
	fx := &reconcileFixture{puts: make(map[int]gateway.Factura)}

	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/facturas/" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[
				{"id_factura": 1, "id_cliente": 10, "numero_factura": "F-001", "monto_total": 100, "tipo_pago": "Credito", "estado_factura": "Pendiente"},
				{"id_factura": 2, "id_cliente": 11, "numero_factura": "F-002", "monto_total": 200, "tipo_pago": "Credito", "estado_factura": "Pendiente"},
				{"id_factura": 3, "id_cliente": 10, "numero_factura": "F-003", "monto_total": 50, "tipo_pago": "Efectivo", "estado_factura": "Pendiente"}
			]`))
		case r.URL.Path == "/clientes/":
			_, _ = w.Write([]byte(`[
				{"id_cliente": 10, "nombre": "Ana", "apellido": "Mora"},
				{"id_cliente": 11, "nombre": "Luis", "apellido": "Paz"}
			]`))
		case strings.HasPrefix(r.URL.Path, "/facturas/") && r.Method == http.MethodPut:
			var f gateway.Factura
			require.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			fx.mu.Lock()
			fx.puts[f.IDFactura] = f
			fx.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(apdis.Close)

	cobros := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if deudoresStatus != http.StatusOK {
			w.WriteHeader(deudoresStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id_cliente": 11, "facturas_pendientes": [{"id_factura": 2}]}
		]`))
	}))
	t.Cleanup(cobros.Close)

	apdisClient := gateway.NewClient(apdis.URL, 5*time.Second)
	facturas := gateway.NewFacturas(apdisClient)
	clientes := gateway.NewClientes(apdisClient)
	deudores := gateway.NewDeudores(gateway.NewClient(cobros.URL, 5*time.Second))
	emitter := audit.NewEmitter(nil, nil, discardLogger(), nil)

	fx.reconciler = factura.NewReconciler(facturas, clientes, deudores, emitter, nil, discardLogger(), policy)
	return fx
}

func (fx *reconcileFixture) putFor(id int) (gateway.Factura, bool) {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	f, ok := fx.puts[id]
	return f, ok
}

func viewByID(t *testing.T, views []factura.View, id int) factura.View {
	t.Helper()
	for _, v := range views {
		if v.IDFactura == id {
			return v
		}
	}
	t.Fatalf("invoice %d not in result", id)
	return factura.View{}
}

func TestReconcileMarksSettledCreditInvoicesPaid(t *testing.T) {
	fx := newReconcileFixture(t, http.StatusOK, factura.DeletableAlways)

	result, err := fx.reconciler.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.SyncSkipped)
	require.Len(t, result.Facturas, 3)

	// Invoice 1: credit, pending, gone from the debtor list -> corrected.
	assert.Equal(t, gateway.EstadoPagado, viewByID(t, result.Facturas, 1).EstadoFactura)
	// Invoice 2: still tracked by AR -> untouched.
	assert.Equal(t, gateway.EstadoPendiente, viewByID(t, result.Facturas, 2).EstadoFactura)
	// Invoice 3: cash -> never considered even though pending.
	assert.Equal(t, gateway.EstadoPendiente, viewByID(t, result.Facturas, 3).EstadoFactura)

	put, ok := fx.putFor(1)
	require.True(t, ok, "corrected invoice must be written back")
	assert.Equal(t, gateway.EstadoPagado, put.EstadoFactura)
	assert.Equal(t, "F-001", put.NumeroFactura, "write-back sends the full record")
	_, ok = fx.putFor(2)
	assert.False(t, ok)
	_, ok = fx.putFor(3)
	assert.False(t, ok)

	require.Len(t, result.Writebacks, 1)
	assert.NoError(t, result.Writebacks[0].Err)
	assert.Equal(t, 1, result.Writebacks[0].IDFactura)
}

func TestReconcileJoinsClientsAndSortsNewestFirst(t *testing.T) {
	fx := newReconcileFixture(t, http.StatusOK, factura.DeletableAlways)

	result, err := fx.reconciler.Run(context.Background())
	require.NoError(t, err)

	ids := make([]int, 0, len(result.Facturas))
	for _, v := range result.Facturas {
		ids = append(ids, v.IDFactura)
	}
	assert.Equal(t, []int{3, 2, 1}, ids)

	v := viewByID(t, result.Facturas, 2)
	require.NotNil(t, v.Cliente)
	assert.Equal(t, "Luis", v.Cliente.Nombre)
	assert.True(t, v.Deletable)
}

func TestReconcileSkipsWhenDebtorListUnavailable(t *testing.T) {
	fx := newReconcileFixture(t, http.StatusServiceUnavailable, factura.DeletableAlways)

	result, err := fx.reconciler.Run(context.Background())
	require.NoError(t, err, "a debtor outage must not fail the page")
	assert.True(t, result.SyncSkipped)
	assert.Empty(t, result.Writebacks)

	// No status was touched.
	assert.Equal(t, gateway.EstadoPendiente, viewByID(t, result.Facturas, 1).EstadoFactura)
	_, ok := fx.putFor(1)
	assert.False(t, ok)
}

func TestReconcileDerivedDeletablePolicy(t *testing.T) {
	fx := newReconcileFixture(t, http.StatusOK, factura.DeletableDerived)

	result, err := fx.reconciler.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, viewByID(t, result.Facturas, 1).Deletable, "settled invoice is deletable")
	assert.False(t, viewByID(t, result.Facturas, 2).Deletable, "AR still tracks invoice 2")
	assert.True(t, viewByID(t, result.Facturas, 3).Deletable)
}
