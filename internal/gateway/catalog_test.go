package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCatalogCachesActiveProducts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "nombre": "Teclado", "precio": 25.5, "stock": 10, "estado": "Activo"}]`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := NewCatalog(NewProductos(NewClient(srv.URL, 5*time.Second)), client, time.Minute, logger)

	ctx := context.Background()
	first, err := catalog.Activos(ctx)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	second, err := catalog.Activos(ctx)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream hit got %d", hits.Load())
	}
	if len(first) != 1 || len(second) != 1 || second[0].Nombre != "Teclado" {
		t.Fatalf("unexpected cached result %+v", second)
	}

	catalog.Invalidate(ctx)
	if _, err := catalog.Activos(ctx); err != nil {
		t.Fatalf("fetch after invalidate: %v", err)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected refetch after invalidate got %d hits", hits.Load())
	}
}

func TestCatalogWorksWithoutRedis(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "nombre": "Teclado", "precio": 25.5, "stock": 10, "estado": "Activo"}]`))
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := NewCatalog(NewProductos(NewClient(srv.URL, 5*time.Second)), nil, time.Minute, logger)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := catalog.Activos(ctx); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if hits.Load() != 2 {
		t.Fatalf("expected every call to hit upstream got %d", hits.Load())
	}
}
