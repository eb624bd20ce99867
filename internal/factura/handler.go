package factura

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/platform/httpx"
	"github.com/apdis/apdis-manager/internal/validation"
)

// Handler wires the invoice HTTP surface.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	reconciler *Reconciler
	clientes   *gateway.Clientes
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, reconciler *Reconciler, clientes *gateway.Clientes) *Handler {
	return &Handler{logger: logger, service: service, reconciler: reconciler, clientes: clientes}
}

// MountRoutes registers invoice routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/export.xlsx", h.handleExport)
	r.Get("/productos", h.handleProductos)
	r.Get("/clientes", h.handleClientes)
	r.Get("/{id}/detalles", h.handleDetalles)
	r.Delete("/{id}", h.handleDelete)
}

// handleList serves the reconciled invoice list. The response is already
// corrected against the accounts-receivable debtor list; write-back failures
// are reported as a count, not as an error.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.Run(r.Context())
	if err != nil {
		h.logger.Error("list facturas", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	facturas := result.Facturas
	if q := r.URL.Query().Get("q"); q != "" {
		facturas = filterViews(facturas, q)
	}

	writebackFailures := 0
	for _, wb := range result.Writebacks {
		if wb.Err != nil {
			writebackFailures++
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"facturas":           facturas,
		"sync_skipped":       result.SyncSkipped,
		"writeback_failures": writebackFailures,
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form validation.FacturaForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Cuerpo de la solicitud inválido.")
		return
	}
	id, err := h.service.Crear(r.Context(), form)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			httpx.FieldProblem(w, http.StatusBadRequest, "Revise los campos marcados.", verrs)
			return
		}
		h.logger.Error("crear factura", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id_factura": id})
}

func (h *Handler) handleDetalles(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Identificador de factura inválido.")
		return
	}
	detalles, err := h.service.Detalles(r.Context(), id)
	if err != nil {
		h.logger.Error("detalles factura", slog.Int("id_factura", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if detalles == nil {
		detalles = []gateway.DetalleFactura{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id_factura": id, "detalles": detalles})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Identificador de factura inválido.")
		return
	}
	if err := h.service.Eliminar(r.Context(), id); err != nil {
		h.logger.Error("eliminar factura", slog.Int("id_factura", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconciler.Run(r.Context())
	if err != nil {
		h.logger.Error("export facturas", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	filename := fmt.Sprintf("facturas_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := ExportXLSX(w, result.Facturas); err != nil {
		// Headers already sent; nothing left to do but log.
		h.logger.Error("write xlsx", slog.Any("error", err))
	}
}

// handleProductos serves the active catalog for the line-item picker.
func (h *Handler) handleProductos(w http.ResponseWriter, r *http.Request) {
	productos, err := h.service.Productos(r.Context())
	if err != nil {
		h.logger.Error("productos", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"productos": FilterProductos(productos, r.URL.Query().Get("q")),
	})
}

// handleClientes serves the client selector for the invoice form. Only active
// clients may be invoiced.
func (h *Handler) handleClientes(w http.ResponseWriter, r *http.Request) {
	clientes, err := h.clientes.List(r.Context())
	if err != nil {
		h.logger.Error("clientes selector", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	activos := clientes[:0]
	for _, c := range clientes {
		if strings.EqualFold(c.Estado, gateway.EstadoActivo) {
			activos = append(activos, c)
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"clientes": FilterClientes(activos, r.URL.Query().Get("q")),
	})
}

func filterViews(views []View, q string) []View {
	out := make([]View, 0, len(views))
	for _, v := range views {
		clientes := []gateway.Cliente{}
		if v.Cliente != nil {
			clientes = append(clientes, *v.Cliente)
		}
		if len(FilterClientes(clientes, q)) > 0 || containsFold(v.NumeroFactura, q) {
			out = append(out, v)
		}
	}
	return out
}
