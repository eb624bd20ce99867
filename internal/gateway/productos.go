package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Productos reads the external product catalog. Two incompatible catalog
// services are in production; both are normalized here into Producto.
type Productos struct {
	client *Client
}

// NewProductos constructs the gateway.
func NewProductos(client *Client) *Productos {
	return &Productos{client: client}
}

// productoWire tolerates every field alias observed across integrations:
// id/id_producto, precio/pvp/precio_unitario, stock/stock_disponible/
// stock_minimo. Numeric fields arrive as strings in one of them. Aliases
// are pointers so that an absent field and a legitimate zero (a sold-out
// stock) stay distinguishable.
type productoWire struct {
	ID         *flexInt `json:"id"`
	IDProducto *flexInt `json:"id_producto"`

	Nombre string `json:"nombre"`

	Precio         *flexDecimal `json:"precio"`
	PVP            *flexDecimal `json:"pvp"`
	PrecioUnitario *flexDecimal `json:"precio_unitario"`

	Stock           *flexInt `json:"stock"`
	StockDisponible *flexInt `json:"stock_disponible"`
	StockMinimo     *flexInt `json:"stock_minimo"`

	IVA    flexBool        `json:"iva"`
	Estado json.RawMessage `json:"estado"`
}

type productosEnvelope struct {
	Productos []productoWire `json:"productos"`
}

// List fetches and normalizes the whole catalog. The response is either a
// bare array or an envelope under "productos".
func (g *Productos) List(ctx context.Context) ([]Producto, error) {
	var raw json.RawMessage
	if err := g.client.get(ctx, "/productos", &raw); err != nil {
		return nil, err
	}

	var wires []productoWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		var env productosEnvelope
		if err2 := json.Unmarshal(raw, &env); err2 != nil {
			return nil, fmt.Errorf("gateway: unrecognized catalog shape: %w", err)
		}
		wires = env.Productos
	}

	productos := make([]Producto, 0, len(wires))
	for _, w := range wires {
		productos = append(productos, w.normalize())
	}
	return productos, nil
}

// Activos returns only the products offered for invoicing.
func (g *Productos) Activos(ctx context.Context) ([]Producto, error) {
	all, err := g.List(ctx)
	if err != nil {
		return nil, err
	}
	activos := all[:0]
	for _, p := range all {
		if strings.EqualFold(p.Estado, EstadoActivo) {
			activos = append(activos, p)
		}
	}
	return activos, nil
}

func (w productoWire) normalize() Producto {
	p := Producto{
		Nombre: w.Nombre,
		IVA:    bool(w.IVA),
		Estado: decodeEstado(w.Estado),
	}
	p.ID = firstInt(w.ID, w.IDProducto)
	p.Precio = firstDecimal(w.Precio, w.PVP, w.PrecioUnitario)
	p.Stock = firstInt(w.Stock, w.StockDisponible, w.StockMinimo)
	return p
}

// firstInt picks the first alias the payload actually carried.
func firstInt(candidates ...*flexInt) int {
	for _, c := range candidates {
		if c != nil {
			return int(*c)
		}
	}
	return 0
}

func firstDecimal(candidates ...*flexDecimal) decimal.Decimal {
	for _, c := range candidates {
		if c != nil {
			return decimal.Decimal(*c)
		}
	}
	return decimal.Zero
}

// decodeEstado accepts the boolean flag one catalog uses and the
// Activo/Inactivo string the other serves.
func decodeEstado(raw json.RawMessage) string {
	if len(raw) == 0 {
		return EstadoActivo
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return EstadoActivo
		}
		return EstadoInactivo
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return EstadoActivo
}

// flexInt decodes 3, "3" and null.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		// Tolerate decimal-formatted stock counts.
		d, derr := decimal.NewFromString(s)
		if derr != nil {
			return err
		}
		n = int(d.IntPart())
	}
	*f = flexInt(n)
	return nil
}

// flexDecimal decodes 12.5, "12.50" and null.
type flexDecimal decimal.Decimal

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = flexDecimal(decimal.Zero)
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexDecimal(d)
	return nil
}

// flexBool decodes true, "true", 1 and null.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch s {
	case "true", "1", "si", "Si":
		*f = true
	default:
		*f = false
	}
	return nil
}
