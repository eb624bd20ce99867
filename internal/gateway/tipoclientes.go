package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// TipoClientes proxies the /tipo_clientes resource.
type TipoClientes struct {
	client *Client
}

// NewTipoClientes constructs the gateway.
func NewTipoClientes(client *Client) *TipoClientes {
	return &TipoClientes{client: client}
}

// TipoClienteInput is the write shape for client types.
type TipoClienteInput struct {
	Nombre      string          `json:"nombre"`
	MontoMaximo decimal.Decimal `json:"monto_maximo"`
}

// List returns every client type.
func (g *TipoClientes) List(ctx context.Context) ([]TipoCliente, error) {
	var out []TipoCliente
	if err := g.client.get(ctx, "/tipo_clientes/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create posts a new client type and returns the stored record.
func (g *TipoClientes) Create(ctx context.Context, in TipoClienteInput) (*TipoCliente, error) {
	var out TipoCliente
	if err := g.client.post(ctx, "/tipo_clientes/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces a client type.
func (g *TipoClientes) Update(ctx context.Context, id int, in TipoClienteInput) error {
	return g.client.put(ctx, fmt.Sprintf("/tipo_clientes/%d/", id), in, nil)
}

// Delete removes a client type. The remote API rejects the delete when any
// cliente still references it.
func (g *TipoClientes) Delete(ctx context.Context, id int) error {
	return g.client.delete(ctx, fmt.Sprintf("/tipo_clientes/%d/", id))
}
