package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/platform/httpx"
	"github.com/apdis/apdis-manager/internal/shared"
	"github.com/apdis/apdis-manager/internal/validation"
)

// Handler wires HTTP endpoints for authentication flows. Credentials are
// never stored here; login is proxied to the security service and only the
// resulting token and permissions live in the session.
type Handler struct {
	logger            *slog.Logger
	seguridad         *gateway.Seguridad
	sessionManager    *shared.SessionManager
	allowDirectAccess bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, seguridad *gateway.Seguridad, sessions *shared.SessionManager, allowDirectAccess bool) *Handler {
	return &Handler{
		logger:            logger,
		seguridad:         seguridad,
		sessionManager:    sessions,
		allowDirectAccess: allowDirectAccess,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
	if h.allowDirectAccess {
		r.Post("/direct", h.handleDirectAccess)
	}
}

type loginForm struct {
	Usuario    string `json:"usuario" validate:"required"`
	Contrasena string `json:"contrasena" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Datos inválidos", "Cuerpo de la solicitud inválido.")
		return
	}
	if errs := validation.Struct(form); errs != nil {
		httpx.FieldProblem(w, http.StatusBadRequest, "Complete usuario y contraseña.", errs)
		return
	}

	result, err := h.seguridad.Login(r.Context(), form.Usuario, form.Contrasena)
	if err != nil {
		if re, ok := httpx.AsRemote(err); ok && re.Status < 500 {
			err = shared.ErrInvalidCredentials
		}
		if errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Info("login rejected", slog.String("usuario", form.Usuario))
			httpx.Problem(w, http.StatusUnauthorized, "No autorizado", "Credenciales incorrectas.")
			return
		}
		h.logger.Error("login upstream", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Error interno", "")
		return
	}
	user := User{
		Usuario:   form.Usuario,
		Token:     result.Token,
		NombreRol: "Sistema",
		Permisos:  result.Permisos,
	}
	if err := SaveUser(sess, user); err != nil {
		h.logger.Error("save user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Error interno", "")
		return
	}
	sess.SetDirectAccess(false)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"usuario":  user.Usuario,
		"permisos": user.Permisos,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		ClearUser(sess)
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if DirectAccess(r.Context()) {
		httpx.JSON(w, http.StatusOK, map[string]any{"direct_access": true})
		return
	}
	u, ok := CurrentUser(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"usuario":  u.Usuario,
		"permisos": u.Permisos,
	})
}

// handleDirectAccess flips the bypass flag. Only mounted when the operator
// enabled ALLOW_DIRECT_ACCESS.
func (h *Handler) handleDirectAccess(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Error interno", "")
		return
	}
	ClearUser(sess)
	sess.SetDirectAccess(true)
	w.WriteHeader(http.StatusNoContent)
}
