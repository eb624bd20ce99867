package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func productosFrom(t *testing.T, body string) []Producto {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/productos" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	g := NewProductos(NewClient(srv.URL, 5*time.Second))
	productos, err := g.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	return productos
}

func TestProductosNormalizesBareArray(t *testing.T) {
	productos := productosFrom(t, `[
		{"id": 1, "nombre": "Teclado", "precio": 25.5, "stock": 10, "iva": true, "estado": "Activo"}
	]`)
	if len(productos) != 1 {
		t.Fatalf("expected one product got %d", len(productos))
	}
	p := productos[0]
	if p.ID != 1 || p.Nombre != "Teclado" || p.Stock != 10 || !p.IVA {
		t.Fatalf("unexpected product %+v", p)
	}
	if p.Precio.String() != "25.5" {
		t.Fatalf("expected price 25.5 got %s", p.Precio)
	}
}

func TestProductosNormalizesEnvelopeWithAliases(t *testing.T) {
	productos := productosFrom(t, `{"productos": [
		{"id_producto": "7", "nombre": "Mouse", "pvp": "12.50", "stock_disponible": "3", "estado": true},
		{"id_producto": 8, "nombre": "Pad", "precio_unitario": 4, "stock_minimo": 2, "estado": false}
	]}`)
	if len(productos) != 2 {
		t.Fatalf("expected two products got %d", len(productos))
	}

	mouse := productos[0]
	if mouse.ID != 7 {
		t.Fatalf("expected string id decoded to 7 got %d", mouse.ID)
	}
	if mouse.Precio.String() != "12.5" {
		t.Fatalf("expected pvp used as price got %s", mouse.Precio)
	}
	if mouse.Stock != 3 {
		t.Fatalf("expected stock_disponible used got %d", mouse.Stock)
	}
	if mouse.Estado != EstadoActivo {
		t.Fatalf("expected boolean estado mapped to Activo got %q", mouse.Estado)
	}

	pad := productos[1]
	if pad.Estado != EstadoInactivo {
		t.Fatalf("expected false estado mapped to Inactivo got %q", pad.Estado)
	}
	if pad.Stock != 2 {
		t.Fatalf("expected stock_minimo fallback got %d", pad.Stock)
	}
}

func TestProductosSoldOutStockNotMaskedByMinimo(t *testing.T) {
	productos := productosFrom(t, `[
		{"id": 1, "nombre": "Teclado", "precio": 25.5, "stock": 0, "stock_minimo": 5, "estado": "Activo"}
	]`)
	if len(productos) != 1 {
		t.Fatalf("expected one product got %d", len(productos))
	}
	if productos[0].Stock != 0 {
		t.Fatalf("expected sold-out stock 0, got %d", productos[0].Stock)
	}
}

func TestProductosActivosFiltersInactive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "nombre": "A", "precio": 1, "stock": 1, "estado": "Activo"},
			{"id": 2, "nombre": "B", "precio": 1, "stock": 1, "estado": "Inactivo"},
			{"id": 3, "nombre": "C", "precio": 1, "stock": 1, "estado": "activo"}
		]`))
	}))
	defer srv.Close()

	g := NewProductos(NewClient(srv.URL, 5*time.Second))
	activos, err := g.Activos(context.Background())
	if err != nil {
		t.Fatalf("Activos returned error: %v", err)
	}
	if len(activos) != 2 {
		t.Fatalf("expected two active products got %d", len(activos))
	}
	if activos[0].ID != 1 || activos[1].ID != 3 {
		t.Fatalf("unexpected active set %+v", activos)
	}
}
