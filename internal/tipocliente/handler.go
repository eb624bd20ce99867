package tipocliente

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/apdis/apdis-manager/internal/platform/httpx"
	"github.com/apdis/apdis-manager/internal/validation"
)

// Handler wires the client-type HTTP surface.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers client-type routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Put("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tipos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list tipo_clientes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tipo_clientes": tipos})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var form validation.TipoClienteForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Cuerpo de la solicitud inválido.")
		return
	}
	created, err := h.service.Crear(r.Context(), form)
	if err != nil {
		h.respondErr(w, "crear tipo de cliente", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Identificador inválido.")
		return
	}
	var form validation.TipoClienteForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Cuerpo de la solicitud inválido.")
		return
	}
	if err := h.service.Actualizar(r.Context(), id, form); err != nil {
		h.respondErr(w, "actualizar tipo de cliente", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Identificador inválido.")
		return
	}
	if err := h.service.Eliminar(r.Context(), id); err != nil {
		if re, ok := httpx.AsRemote(err); ok && re.Status < 500 {
			httpx.Problem(w, http.StatusConflict, "No se pudo eliminar",
				"No se pudo eliminar el tipo de cliente. Es posible que esté en uso.")
			return
		}
		h.logger.Error("eliminar tipo de cliente", slog.Int("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		httpx.FieldProblem(w, http.StatusBadRequest, "Revise los campos marcados.", verrs)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
