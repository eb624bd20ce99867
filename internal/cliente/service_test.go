package cliente

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/validation"
	_ "github.com/apdis/apdis-manager/testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clientes := gateway.NewClientes(gateway.NewClient(srv.URL, 5*time.Second))
	emitter := audit.NewEmitter(nil, nil, logger, nil)
	return NewService(clientes, emitter, logger)
}

func validClienteForm() validation.ClienteForm {
	return validation.ClienteForm{
		Nombre:               "Ana",
		Apellido:             "Mora",
		Direccion:            "Av. Amazonas 123",
		Telefono:             "0991234567",
		CorreoElectronico:    "ana@example.com",
		TipoIdentificacion:   "Cédula",
		NumeroIdentificacion: "1712345678",
		Estado:               "Activo",
		IDTipoCliente:        1,
	}
}

func TestCrearMapsCedulaRejectionToField(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "Cédula inválida"}`))
	})

	_, err := svc.Crear(context.Background(), validClienteForm())
	require.Error(t, err)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "numero_identificacion")
	assert.Contains(t, verrs["numero_identificacion"], "cédula")
}

func TestCrearMapsDuplicateToField(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "el cliente ya existe"}`))
	})

	_, err := svc.Crear(context.Background(), validClienteForm())
	require.Error(t, err)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Un cliente con este número de identificación ya existe.", verrs["numero_identificacion"])
}

func TestCrearPassesThroughServerErrors(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Crear(context.Background(), validClienteForm())
	require.Error(t, err)
	var verrs validation.Errors
	assert.False(t, errors.As(err, &verrs), "5xx must not be mistaken for a field error")
}

func TestCrearValidatesBeforeNetwork(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})

	form := validClienteForm()
	form.CorreoElectronico = "not-an-email"
	_, err := svc.Crear(context.Background(), form)
	require.Error(t, err)
	var verrs validation.Errors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs, "correo_electronico")
}

func TestListFiltersAndSortsNewestFirst(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id_cliente": 1, "nombre": "Ana", "apellido": "Mora", "numero_identificacion": "1712345678"},
			{"id_cliente": 2, "nombre": "Luis", "apellido": "Paz", "numero_identificacion": "0912345678"},
			{"id_cliente": 3, "nombre": "Anabel", "apellido": "Ruiz", "numero_identificacion": "1798765432"}
		]`))
	})

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].IDCliente)

	matched, err := svc.List(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, matched, 2)

	byID, err := svc.List(context.Background(), "0912")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Luis", byID[0].Nombre)
}
