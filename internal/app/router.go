package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/apdis/apdis-manager/internal/auth"
	"github.com/apdis/apdis-manager/internal/cliente"
	"github.com/apdis/apdis-manager/internal/factura"
	"github.com/apdis/apdis-manager/internal/observability"
	"github.com/apdis/apdis-manager/internal/shared"
	"github.com/apdis/apdis-manager/internal/tipocliente"
	"github.com/apdis/apdis-manager/jobs"
)

// Submodule names as the security service registers them for the FAC module.
const (
	SubmoduloClientes     = "Clientes"
	SubmoduloTipoClientes = "Tipos de Cliente"
	SubmoduloFacturas     = "Facturas"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	AuthHandler        *auth.Handler
	TipoClienteHandler *tipocliente.Handler
	ClienteHandler     *cliente.Handler
	FacturaHandler     *factura.Handler
	JobHandler         *jobs.Handler
	AuthMiddleware     auth.Middleware
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with the full API surface.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	guard := params.AuthMiddleware
	r.Route("/tipo_clientes", func(r chi.Router) {
		r.Use(guard.RequireCRUD(SubmoduloTipoClientes))
		params.TipoClienteHandler.MountRoutes(r)
	})
	r.Route("/clientes", func(r chi.Router) {
		r.Use(guard.RequireCRUD(SubmoduloClientes))
		params.ClienteHandler.MountRoutes(r)
	})
	r.Route("/facturas", func(r chi.Router) {
		r.Use(guard.RequireCRUD(SubmoduloFacturas))
		params.FacturaHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
