package factura_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/factura"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/validation"
	_ "github.com/apdis/apdis-manager/testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "nombre": "Teclado", "precio": 25.50, "stock": 10, "estado": "Activo"},
			{"id": 2, "nombre": "Mouse", "precio": 12.00, "stock": 3, "estado": "Activo"}
		]`))
	}))
}

func newService(t *testing.T, apdis *httptest.Server) *factura.Service {
	t.Helper()
	catSrv := catalogServer(t)
	t.Cleanup(catSrv.Close)

	facturas := gateway.NewFacturas(gateway.NewClient(apdis.URL, 5*time.Second))
	productos := gateway.NewProductos(gateway.NewClient(catSrv.URL, 5*time.Second))
	catalog := gateway.NewCatalog(productos, nil, time.Minute, discardLogger())
	emitter := audit.NewEmitter(nil, nil, discardLogger(), nil)
	return factura.NewService(facturas, catalog, emitter, discardLogger())
}

func validForm() validation.FacturaForm {
	return validation.FacturaForm{
		Header: validation.FacturaHeaderForm{
			IDCliente:     7,
			TipoPago:      gateway.PagoCredito,
			EstadoFactura: gateway.EstadoPendiente,
		},
		Detalles: []validation.DetalleForm{
			{IDProducto: 1, Cantidad: 2},
			{IDProducto: 2, Cantidad: 1},
		},
	}
}

func TestCrearRejectsEmptyFormWithoutNetworkCalls(t *testing.T) {
	var calls atomic.Int32
	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer apdis.Close()

	svc := newService(t, apdis)

	_, err := svc.Crear(context.Background(), validation.FacturaForm{})
	require.Error(t, err)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "detalles")
	assert.Equal(t, int32(0), calls.Load(), "invalid drafts must not reach the invoice API")
}

func TestCrearSubmitsHeaderThenDetalles(t *testing.T) {
	var headerBody, detalleBody []byte
	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/facturas/":
			headerBody = body
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id_factura": 42, "id_cliente": 7, "monto_total": 0}`))
		case "/detalle_facturas/":
			require.NotNil(t, headerBody, "detalles posted before the header")
			detalleBody = body
			w.WriteHeader(http.StatusCreated)
		case "/facturas/42/":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id_factura": 42, "monto_total": 63.00}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer apdis.Close()

	svc := newService(t, apdis)

	id, err := svc.Crear(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	var header gateway.FacturaHeaderInput
	require.NoError(t, json.Unmarshal(headerBody, &header))
	assert.Equal(t, 0, header.MontoTotal, "header is created with a zero placeholder total")

	var batch gateway.DetalleBatch
	require.NoError(t, json.Unmarshal(detalleBody, &batch))
	assert.Equal(t, 42, batch.IDFactura)
	assert.Len(t, batch.Productos, 2)
}

func TestCrearLeavesOrphanHeaderOnDetalleFailure(t *testing.T) {
	var deletes atomic.Int32
	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/facturas/" && r.Method == http.MethodPost:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id_factura": 42}`))
		case r.URL.Path == "/detalle_facturas/":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "boom"}`))
		case r.Method == http.MethodDelete:
			deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer apdis.Close()

	svc := newService(t, apdis)

	_, err := svc.Crear(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, int32(0), deletes.Load(), "no compensating delete: the orphan header stays")
}

func TestCrearRequiresGeneratedID(t *testing.T) {
	var detalleCalls atomic.Int32
	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/facturas/":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{}`))
		case "/detalle_facturas/":
			detalleCalls.Add(1)
			w.WriteHeader(http.StatusCreated)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer apdis.Close()

	svc := newService(t, apdis)

	_, err := svc.Crear(context.Background(), validForm())
	require.Error(t, err)
	assert.Equal(t, int32(0), detalleCalls.Load(), "detalles must not be posted without a generated id")
}

func TestCrearToleratesTotalDivergence(t *testing.T) {
	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/facturas/":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id_factura": 42}`))
		case "/detalle_facturas/":
			w.WriteHeader(http.StatusCreated)
		case "/facturas/42/":
			// The remote recomputed something else entirely.
			_, _ = w.Write([]byte(`{"id_factura": 42, "monto_total": 999.99}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer apdis.Close()

	svc := newService(t, apdis)

	id, err := svc.Crear(context.Background(), validForm())
	require.NoError(t, err, "a diverging persisted total is logged, never fatal")
	assert.Equal(t, 42, id)
}

func TestCrearRejectsStockExcess(t *testing.T) {
	apdis := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))
	defer apdis.Close()

	svc := newService(t, apdis)

	form := validForm()
	form.Detalles = []validation.DetalleForm{{IDProducto: 2, Cantidad: 4}}
	_, err := svc.Crear(context.Background(), form)
	require.Error(t, err)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "detalles.0.cantidad")
}
