// Package cliente manages customer records. Storage belongs to the remote
// APDIS API; this package proxies the CRUD, translates upstream rejections
// into field errors, and audits every mutation.
package cliente

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/platform/httpx"
	"github.com/apdis/apdis-manager/internal/validation"
)

// Service proxies client CRUD to the remote API.
type Service struct {
	clientes *gateway.Clientes
	emitter  *audit.Emitter
	logger   *slog.Logger
}

// NewService constructs the service.
func NewService(clientes *gateway.Clientes, emitter *audit.Emitter, logger *slog.Logger) *Service {
	return &Service{clientes: clientes, emitter: emitter, logger: logger}
}

// List returns every client, optionally filtered by name or identification
// number, newest first.
func (s *Service) List(ctx context.Context, q string) ([]gateway.Cliente, error) {
	clientes, err := s.clientes.List(ctx)
	if err != nil {
		return nil, err
	}
	clientes = filter(clientes, q)
	sort.Slice(clientes, func(i, j int) bool { return clientes[i].IDCliente > clientes[j].IDCliente })
	return clientes, nil
}

// Crear validates and creates a client. Identification checks (checksum,
// uniqueness) run upstream; their rejections come back attached to the
// numero_identificacion field.
func (s *Service) Crear(ctx context.Context, form validation.ClienteForm) (*gateway.Cliente, error) {
	if errs := validation.Struct(form); errs != nil {
		return nil, validation.Errors(errs)
	}
	created, err := s.clientes.Create(ctx, toInput(form))
	if err != nil {
		if errs := remoteFieldErrors(err); errs != nil {
			return nil, errs
		}
		return nil, err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionCreate,
		Tabla:      "clientes",
		IDRegistro: created.IDCliente,
		Details:    auditDetails(form),
	})
	return created, nil
}

// Actualizar validates and replaces a client.
func (s *Service) Actualizar(ctx context.Context, id int, form validation.ClienteForm) error {
	if errs := validation.Struct(form); errs != nil {
		return validation.Errors(errs)
	}
	if err := s.clientes.Update(ctx, id, toInput(form)); err != nil {
		if errs := remoteFieldErrors(err); errs != nil {
			return errs
		}
		return err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionUpdate,
		Tabla:      "clientes",
		IDRegistro: id,
		Details:    auditDetails(form),
	})
	return nil
}

// Eliminar removes a client. The remote API rejects the delete while any
// factura references the client.
func (s *Service) Eliminar(ctx context.Context, id int) error {
	if err := s.clientes.Delete(ctx, id); err != nil {
		return err
	}
	s.emitter.Emit(ctx, audit.Entry{
		Accion:     audit.AccionDelete,
		Tabla:      "clientes",
		IDRegistro: id,
		Details:    map[string]any{"message": fmt.Sprintf("Cliente con id %d eliminado.", id)},
	})
	return nil
}

func toInput(form validation.ClienteForm) gateway.ClienteInput {
	return gateway.ClienteInput{
		IDTipoCliente:        form.IDTipoCliente,
		Nombre:               form.Nombre,
		Apellido:             form.Apellido,
		Direccion:            form.Direccion,
		Telefono:             form.Telefono,
		CorreoElectronico:    form.CorreoElectronico,
		Estado:               form.Estado,
		TipoIdentificacion:   form.TipoIdentificacion,
		NumeroIdentificacion: form.NumeroIdentificacion,
	}
}

func auditDetails(form validation.ClienteForm) map[string]any {
	return map[string]any{
		"nombre":                form.Nombre,
		"apellido":              form.Apellido,
		"numero_identificacion": form.NumeroIdentificacion,
		"estado":                form.Estado,
	}
}

// remoteFieldErrors maps known upstream rejection texts onto the offending
// field. Anything unrecognized passes through untouched.
func remoteFieldErrors(err error) validation.Errors {
	re, ok := httpx.AsRemote(err)
	if !ok || re.Status >= 500 {
		return nil
	}
	body := strings.ToLower(re.Body)
	switch {
	case strings.Contains(body, "dula inv"): // cédula inválida
		return validation.Errors{"numero_identificacion": "La cédula ingresada no es válida."}
	case strings.Contains(body, "ruc inv"):
		return validation.Errors{"numero_identificacion": "El RUC ingresado no es válido."}
	case strings.Contains(body, "ya existe") || strings.Contains(body, "unique") || strings.Contains(body, "duplicad"):
		return validation.Errors{"numero_identificacion": "Un cliente con este número de identificación ya existe."}
	}
	return nil
}

func filter(clientes []gateway.Cliente, q string) []gateway.Cliente {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return clientes
	}
	out := make([]gateway.Cliente, 0, len(clientes))
	for _, c := range clientes {
		display := strings.ToLower(c.Nombre + " " + c.Apellido)
		if strings.Contains(display, q) || strings.Contains(strings.ToLower(c.NumeroIdentificacion), q) {
			out = append(out, c)
		}
	}
	return out
}
