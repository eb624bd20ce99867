package gateway

import (
	"context"
	"fmt"
)

// Clientes proxies the /clientes resource.
type Clientes struct {
	client *Client
}

// NewClientes constructs the gateway.
func NewClientes(client *Client) *Clientes {
	return &Clientes{client: client}
}

// ClienteInput is the write shape for clients.
type ClienteInput struct {
	IDTipoCliente        int    `json:"id_tipo_cliente"`
	Nombre               string `json:"nombre"`
	Apellido             string `json:"apellido"`
	Direccion            string `json:"direccion"`
	Telefono             string `json:"telefono"`
	CorreoElectronico    string `json:"correo_electronico"`
	Estado               string `json:"estado"`
	TipoIdentificacion   string `json:"tipo_identificacion"`
	NumeroIdentificacion string `json:"numero_identificacion"`
}

// List returns every client.
func (g *Clientes) List(ctx context.Context) ([]Cliente, error) {
	var out []Cliente
	if err := g.client.get(ctx, "/clientes/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new client and returns the stored record.
func (g *Clientes) Create(ctx context.Context, in ClienteInput) (*Cliente, error) {
	var out Cliente
	if err := g.client.post(ctx, "/clientes/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a client.
func (g *Clientes) Update(ctx context.Context, id int, in ClienteInput) error {
	return g.client.put(ctx, fmt.Sprintf("/clientes/%d/", id), in, nil)
}

// Delete removes a client. Fails remotely when facturas reference it.
func (g *Clientes) Delete(ctx context.Context, id int) error {
	return g.client.delete(ctx, fmt.Sprintf("/clientes/%d/", id))
}
