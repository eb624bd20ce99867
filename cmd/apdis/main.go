package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/apdis/apdis-manager/internal/app"
	"github.com/apdis/apdis-manager/internal/audit"
	"github.com/apdis/apdis-manager/internal/auth"
	"github.com/apdis/apdis-manager/internal/cliente"
	"github.com/apdis/apdis-manager/internal/factura"
	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/observability"
	"github.com/apdis/apdis-manager/internal/platform/cache"
	"github.com/apdis/apdis-manager/internal/shared"
	"github.com/apdis/apdis-manager/internal/tipocliente"
	"github.com/apdis/apdis-manager/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "apdis_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	apdisClient := gateway.NewClient(cfg.APDISAPIURL, cfg.UpstreamTimeout)
	productosClient := gateway.NewClient(cfg.ProductosAPIURL, cfg.UpstreamTimeout)
	cobrosClient := gateway.NewClient(cfg.CobrosAPIURL, cfg.UpstreamTimeout)
	seguridadClient := gateway.NewClient(cfg.SeguridadAPIURL, cfg.UpstreamTimeout)

	tipos := gateway.NewTipoClientes(apdisClient)
	clientes := gateway.NewClientes(apdisClient)
	facturas := gateway.NewFacturas(apdisClient)
	productos := gateway.NewProductos(productosClient)
	deudores := gateway.NewDeudores(cobrosClient)
	seguridad := gateway.NewSeguridad(seguridadClient)
	catalog := gateway.NewCatalog(productos, redisClient, cfg.CatalogCacheTTL, logger)

	metrics := observability.NewMetrics()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	emitter := audit.NewEmitter(seguridad, jobsClient, logger, metrics.AuditEmitFailures)

	facturaService := factura.NewService(facturas, catalog, emitter, logger)
	reconciler := factura.NewReconciler(facturas, clientes, deudores, emitter, metrics, logger, factura.DeletablePolicy(cfg.DeletablePolicy))
	tipoService := tipocliente.NewService(tipos, clientes, emitter, logger)
	clienteService := cliente.NewService(clientes, emitter, logger)

	authHandler := auth.NewHandler(logger, seguridad, sessionManager, cfg.AllowDirectAccess)
	tipoHandler := tipocliente.NewHandler(logger, tipoService)
	clienteHandler := cliente.NewHandler(logger, clienteService)
	facturaHandler := factura.NewHandler(logger, facturaService, reconciler, clientes)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		TipoClienteHandler: tipoHandler,
		ClienteHandler:     clienteHandler,
		FacturaHandler:     facturaHandler,
		JobHandler:         jobHandler,
		AuthMiddleware:     auth.Middleware{AllowDirectAccess: cfg.AllowDirectAccess},
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
