package auth

import (
	"net/http"
	"strings"

	"github.com/apdis/apdis-manager/internal/platform/httpx"
)

// Accion is one CRUD letter as the security service encodes it.
type Accion byte

const (
	AccionCrear      Accion = 'C'
	AccionLeer       Accion = 'R'
	AccionActualizar Accion = 'U'
	AccionEliminar   Accion = 'D'
)

// HasPermission checks whether the user may perform accion on the submodule.
// Permission descriptions are letter sets: "CR", "CRU", "CRUD".
func HasPermission(u *User, submodulo string, accion Accion) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permisos {
		if !strings.EqualFold(p.NombrePermiso, submodulo) {
			continue
		}
		if !p.Estado {
			return false
		}
		return strings.ContainsRune(p.Descripcion, rune(accion))
	}
	return false
}

// Middleware guards routes by (submodule, action).
type Middleware struct {
	// AllowDirectAccess honors the session bypass flag when the operator
	// enabled it in configuration.
	AllowDirectAccess bool
}

// Require rejects requests lacking the permission.
func (m Middleware) Require(submodulo string, accion Accion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.AllowDirectAccess && DirectAccess(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			u, ok := CurrentUser(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !HasPermission(u, submodulo, accion) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCRUD guards a resource subtree, deriving the required action from
// the HTTP method: GET/HEAD read, POST create, PUT/PATCH update, DELETE delete.
func (m Middleware) RequireCRUD(submodulo string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.AllowDirectAccess && DirectAccess(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			u, ok := CurrentUser(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !HasPermission(u, submodulo, accionForMethod(r.Method)) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func accionForMethod(method string) Accion {
	switch method {
	case http.MethodPost:
		return AccionCrear
	case http.MethodPut, http.MethodPatch:
		return AccionActualizar
	case http.MethodDelete:
		return AccionEliminar
	default:
		return AccionLeer
	}
}
