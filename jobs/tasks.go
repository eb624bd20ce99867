package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/apdis/apdis-manager/internal/gateway"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditEmit delivers one audit record to the security service.
	TaskTypeAuditEmit = "audit:emit"
)

// AuditEmitPayload carries everything the worker needs to post one audit
// record: the user's bearer token and the prepared entry.
type AuditEmitPayload struct {
	Token string            `json:"token"`
	Entry gateway.Auditoria `json:"entry"`
}

// NewAuditEmitTask constructs an Asynq task.
func NewAuditEmitTask(payload AuditEmitPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditEmit, data), nil
}

// AuditEmitJob processes TaskTypeAuditEmit tasks. Audit is strictly
// best-effort: delivery failures are logged and counted, never retried.
type AuditEmitJob struct {
	seguridad *gateway.Seguridad
	logger    *slog.Logger
	failures  prometheus.Counter
}

// NewAuditEmitJob constructs the job handler.
func NewAuditEmitJob(seguridad *gateway.Seguridad, logger *slog.Logger, failures prometheus.Counter) *AuditEmitJob {
	return &AuditEmitJob{seguridad: seguridad, logger: logger, failures: failures}
}

// Handle posts the audit record. It always returns nil on delivery failure so
// Asynq never reschedules the task.
func (j *AuditEmitJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload AuditEmitPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := j.seguridad.EnviarAuditoria(ctx, payload.Token, payload.Entry); err != nil {
		if j.logger != nil {
			j.logger.Warn("audit emit",
				slog.String("tabla", payload.Entry.Tabla),
				slog.String("accion", payload.Entry.Accion),
				slog.Any("error", err))
		}
		if j.failures != nil {
			j.failures.Inc()
		}
	}
	return nil
}
