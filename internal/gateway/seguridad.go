package gateway

import (
	"context"
	"net/http"
)

// Seguridad talks to the security service: login and the audit side channel.
type Seguridad struct {
	client *Client
}

// NewSeguridad constructs the gateway.
func NewSeguridad(client *Client) *Seguridad {
	return &Seguridad{client: client}
}

// ModuloFacturacion identifies this application to the security service.
const ModuloFacturacion = "FAC"

type loginRequest struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
	IDModulo   string `json:"id_modulo"`
}

// LoginResult carries the bearer token and granted permissions.
type LoginResult struct {
	Token    string    `json:"token"`
	Permisos []Permiso `json:"permisos"`
}

// Login authenticates against /usuarios/login for the FAC module.
func (g *Seguridad) Login(ctx context.Context, usuario, contrasena string) (*LoginResult, error) {
	var out LoginResult
	req := loginRequest{Usuario: usuario, Contrasena: contrasena, IDModulo: ModuloFacturacion}
	if err := g.client.post(ctx, "/usuarios/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Auditoria is the audit-service payload. Details is a pre-serialized JSON
// string, matching what the audit API expects.
type Auditoria struct {
	Accion    string `json:"accion"`
	Modulo    string `json:"modulo"`
	Tabla     string `json:"tabla"`
	IDUsuario string `json:"id_usuario"`
	Details   string `json:"details"`
	NombreRol string `json:"nombre_rol"`
}

// EnviarAuditoria posts one audit record with the user's bearer token.
func (g *Seguridad) EnviarAuditoria(ctx context.Context, token string, entry Auditoria) error {
	headers := map[string]string{"Authorization": "Bearer " + token}
	return g.client.do(ctx, http.MethodPost, "/auditoria", entry, nil, headers)
}
