package auth

import (
	"context"
	"encoding/json"

	"github.com/apdis/apdis-manager/internal/gateway"
	"github.com/apdis/apdis-manager/internal/shared"
)

// User is the authenticated identity for one session: username, the bearer
// token issued by the security service and the permissions granted for the
// FAC module. It is loaded and saved explicitly at request boundaries; no
// component reads it from ambient globals.
type User struct {
	Usuario   string            `json:"usuario"`
	Token     string            `json:"token"`
	NombreRol string            `json:"nombre_rol"`
	Permisos  []gateway.Permiso `json:"permisos"`
}

// SaveUser serializes the user into the session.
func SaveUser(sess *shared.Session, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	sess.SetUserPayload(data)
	sess.SetUser(u.Usuario)
	return nil
}

// ClearUser removes the stored identity.
func ClearUser(sess *shared.Session) {
	sess.ClearUserPayload()
	sess.SetUser("")
}

// CurrentUser extracts the authenticated user from the request context.
func CurrentUser(ctx context.Context) (*User, bool) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return nil, false
	}
	raw := sess.UserPayload()
	if raw == nil {
		return nil, false
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, false
	}
	if u.Usuario == "" {
		return nil, false
	}
	return &u, true
}

// DirectAccess reports whether the session carries the login bypass flag.
func DirectAccess(ctx context.Context) bool {
	sess := shared.SessionFromContext(ctx)
	return sess != nil && sess.DirectAccess()
}
