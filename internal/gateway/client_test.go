package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apdis/apdis-manager/internal/platform/httpx"
)

func TestClientWrapsUpstreamFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "cédula inválida"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	err := c.get(context.Background(), "/clientes/", nil)
	if err == nil {
		t.Fatalf("expected error for 400 response")
	}
	if !errors.Is(err, httpx.ErrUpstream) {
		t.Fatalf("expected ErrUpstream got %v", err)
	}
	re, ok := httpx.AsRemote(err)
	if !ok {
		t.Fatalf("expected RemoteError got %v", err)
	}
	if re.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", re.Status)
	}
	if re.Body == "" {
		t.Fatalf("expected captured body")
	}
}

func TestClientDecodesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tipo_clientes/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id_tipcli": 1, "nombre": "VIP", "monto_maximo": 500}]`))
	}))
	defer srv.Close()

	g := NewTipoClientes(NewClient(srv.URL, 5*time.Second))
	tipos, err := g.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(tipos) != 1 || tipos[0].Nombre != "VIP" {
		t.Fatalf("unexpected result %+v", tipos)
	}
	if tipos[0].MontoMaximo.String() != "500" {
		t.Fatalf("expected monto 500 got %s", tipos[0].MontoMaximo)
	}
}

func TestClientSkipsDecodeOnNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	var out map[string]any
	if err := c.delete(context.Background(), "/clientes/1/"); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if err := c.get(context.Background(), "/clientes/", &out); err != nil {
		t.Fatalf("get with empty body returned error: %v", err)
	}
	if out != nil {
		t.Fatalf("expected untouched output got %v", out)
	}
}
