// Package tipocliente manages the client-type catalog that caps how much
// credit each class of client may carry. Records live in the remote APDIS
// API; this package proxies the CRUD and derives the in-use flag locally.
package tipocliente

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/validation"
)

// Service proxies client-type CRUD to the remote API.
type Service struct {
	tipos    *gateway.TipoClientes
	clientes *gateway.Clientes
	emitter  *audit.Emitter
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(tipos *gateway.TipoClientes, clientes *gateway.Clientes, emitter *audit.Emitter, logger *slog.Logger) *Service {
	return &Service{tipos: tipos, clientes: clientes, emitter: emitter, logger: logger}
}

// List returns every client type with the derived in-use flag. The remote API
// does not expose reference counts, so both collections are fetched and
// joined here.
func (s *Service) List(ctx context.Context) ([]gateway.TipoCliente, error) {
	var (
		tipos    []gateway.TipoCliente
		clientes []gateway.Cliente
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tipos, err = s.tipos.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		clientes, err = s.clientes.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inUse := make(map[int]bool, len(tipos))
	for _, c := range clientes {
		inUse[c.IDTipoCliente] = true
	}
	for i := range tipos {
		tipos[i].EnUso = inUse[tipos[i].IDTipCli]
	}
	sort.Slice(tipos, func(i, j int) bool { return tipos[i].IDTipCli < tipos[j].IDTipCli })
	return tipos, nil
}

// Crear validates and creates a client type.
func (s *Service) Crear(ctx context.Context, form validation.TipoClienteForm) (*gateway.TipoCliente, error) {
	if errs := validation.Struct(form); errs != nil {
		return nil, validation.Errors(errs)
	}
	created, err := s.tipos.Create(ctx, gateway.TipoClienteInput{
		Nombre:      form.Nombre,
		MontoMaximo: form.MontoMaximo,
	})
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionCreate,
		Tabla:      "tipo_clientes",
		IDRegistro: created.IDTipCli,
		Details:    map[string]any{"nombre": form.Nombre, "monto_maximo": form.MontoMaximo.String()},
	})
	return created, nil
}

// Actualizar validates and replaces a client type.
func (s *Service) Actualizar(ctx context.Context, id int, form validation.TipoClienteForm) error {
	if errs := validation.Struct(form); errs != nil {
		return validation.Errors(errs)
	}
	if err := s.tipos.Update(ctx, id, gateway.TipoClienteInput{
		Nombre:      form.Nombre,
		MontoMaximo: form.MontoMaximo,
	}); err != nil {
		return err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionUpdate,
		Tabla:      "tipo_clientes",
		IDRegistro: id,
		Details:    map[string]any{"nombre": form.Nombre, "monto_maximo": form.MontoMaximo.String()},
	})
	return nil
}

// Eliminar removes a client type. The remote API rejects the delete while any
// cliente still references the type; that failure surfaces as-is.
func (s *Service) Eliminar(ctx context.Context, id int) error {
	if err := s.tipos.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionDelete,
		Tabla:      "tipo_clientes",
		IDRegistro: id,
		Details:    map[string]any{"message": fmt.Sprintf("Tipo de cliente con id %d eliminado.", id)},
	})
	return nil
}
