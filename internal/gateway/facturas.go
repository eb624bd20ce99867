package gateway

import (
	"context"
	"fmt"
)

// Facturas proxies the /facturas and /detalle_facturas resources.
type Facturas struct {
	client *Client
}

// NewFacturas constructs the gateway.
func NewFacturas(client *Client) *Facturas {
	return &Facturas{client: client}
}

// FacturaHeaderInput is the header write shape. MontoTotal is sent as zero on
// create; the invoice API recomputes it from the detail batch.
type FacturaHeaderInput struct {
	IDCliente     int    `json:"id_cliente"`
	TipoPago      string `json:"tipo_pago"`
	EstadoFactura string `json:"estado_factura"`
	MontoTotal    int    `json:"monto_total"`
}

// DetalleInput is one line of the batch detail payload.
type DetalleInput struct {
	IDProducto int `json:"id_producto"`
	Cantidad   int `json:"cantidad"`
}

// DetalleBatch is the single-request body for /detalle_facturas/.
type DetalleBatch struct {
	IDFactura int            `json:"id_factura"`
	Productos []DetalleInput `json:"productos"`
}

type detalleGroup struct {
	IDFactura int              `json:"id_factura"`
	Detalles  []DetalleFactura `json:"detalles"`
}

// List returns every invoice.
func (g *Facturas) List(ctx context.Context) ([]Factura, error) {
	var out []Factura
	if err := g.client.get(ctx, "/facturas/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single invoice.
func (g *Facturas) Get(ctx context.Context, id int) (*Factura, error) {
	var out Factura
	if err := g.client.get(ctx, fmt.Sprintf("/facturas/%d/", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateHeader posts the invoice header and returns the stored record with
// its generated id.
func (g *Facturas) CreateHeader(ctx context.Context, in FacturaHeaderInput) (*Factura, error) {
	var out Factura
	if err := g.client.post(ctx, "/facturas/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDetalles posts the full line list for one invoice as a single batch.
func (g *Facturas) CreateDetalles(ctx context.Context, batch DetalleBatch) error {
	return g.client.post(ctx, "/detalle_facturas/", batch, nil)
}

// Update replaces an invoice record, used by the AR status write-back.
func (g *Facturas) Update(ctx context.Context, id int, f Factura) error {
	return g.client.put(ctx, fmt.Sprintf("/facturas/%d/", id), f, nil)
}

// Delete removes an invoice together with its details.
func (g *Facturas) Delete(ctx context.Context, id int) error {
	return g.client.delete(ctx, fmt.Sprintf("/facturas/%d/", id))
}

// Detalles returns the lines of one invoice. The observed integration only
// serves the full grouped collection, so filter locally after fetching; a
// second integration honors the query parameter and returns one group.
func (g *Facturas) Detalles(ctx context.Context, facturaID int) ([]DetalleFactura, error) {
	var groups []detalleGroup
	if err := g.client.get(ctx, fmt.Sprintf("/detalle_facturas/?id_factura=%d", facturaID), &groups); err != nil {
		return nil, err
	}
	for _, grp := range groups {
		if grp.IDFactura == facturaID {
			return grp.Detalles, nil
		}
	}
	return nil, nil
}
