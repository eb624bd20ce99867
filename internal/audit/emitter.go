// Package audit delivers best-effort action records to the security
// service's audit endpoint. Nothing here may ever change the outcome of a
// primary operation: failures are logged and counted, never surfaced, never
// retried within the session.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/apdis/apdis-manager/internal/auth"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/shared"
	"github.com/apdis/apdis-manager/jobs"
)

// Actions accepted by the audit service.
const (
	AccionCreate = "CREATE"
	AccionUpdate = "UPDATE"
	AccionDelete = "DELETE"
)

// Entry describes one auditable action.
type Entry struct {
	Accion     string
	Tabla      string
	IDRegistro any
	Details    map[string]any
}

// Queue is the asynchronous delivery path.
type Queue interface {
	EnqueueAuditEmit(ctx context.Context, payload jobs.AuditEmitPayload) error
}

// Emitter builds audit payloads and hands them off. When a queue is
// configured, delivery happens in the worker; otherwise a detached direct
// POST keeps the binary functional without redis.
type Emitter struct {
	seguridad *gateway.Seguridad
	queue     Queue
	logger    *slog.Logger
	failures  prometheus.Counter
}

// NewEmitter constructs an Emitter. queue may be nil.
func NewEmitter(seguridad *gateway.Seguridad, queue Queue, logger *slog.Logger, failures prometheus.Counter) *Emitter {
	return &Emitter{seguridad: seguridad, queue: queue, logger: logger, failures: failures}
}

// Emit sends one audit record on behalf of the current user. Fire and
// forget: the caller's operation has already succeeded by the time this runs
// and nothing that happens here may undo that.
func (e *Emitter) Emit(ctx context.Context, entry Entry) {
	if e == nil || e.seguridad == nil {
		return
	}
	user, ok := auth.CurrentUser(ctx)
	if !ok || user.Token == "" {
		e.fail("audit skipped", entry, shared.ErrNoSession)
		return
	}

	details := make(map[string]any, len(entry.Details)+1)
	for k, v := range entry.Details {
		details[k] = v
	}
	if entry.IDRegistro != nil {
		details["id_registro"] = entry.IDRegistro
	}
	raw, err := json.Marshal(details)
	if err != nil {
		e.fail("audit details marshal", entry, err)
		return
	}

	payload := jobs.AuditEmitPayload{
		Token: user.Token,
		Entry: gateway.Auditoria{
			Accion:    strings.ToUpper(entry.Accion),
			Modulo:    "FACTURACION",
			Tabla:     entry.Tabla,
			IDUsuario: user.Usuario,
			Details:   string(raw),
			NombreRol: user.NombreRol,
		},
	}

	if e.queue != nil {
		if err := e.queue.EnqueueAuditEmit(ctx, payload); err != nil {
			e.fail("audit enqueue", entry, err)
		}
		return
	}

	// Direct path: detach from the request so an unmounting caller does not
	// cancel the delivery mid-flight.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := e.seguridad.EnviarAuditoria(sendCtx, payload.Token, payload.Entry); err != nil {
			e.fail("audit send", entry, err)
		}
	}()
}

func (e *Emitter) fail(msg string, entry Entry, err error) {
	if e.logger != nil {
		e.logger.Warn(msg,
			slog.String("tabla", entry.Tabla),
			slog.String("accion", entry.Accion),
			slog.Any("error", err))
	}
	if e.failures != nil {
		e.failures.Inc()
	}
}
