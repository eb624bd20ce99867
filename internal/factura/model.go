package factura

import (
	"strings"

	"github.com/apdis/apdis-manager/internal/gateway"
)

// View is one invoice as the list page shows it: the stored record joined
// with its client and the deletable flag.
type View struct {
	gateway.Factura
	Cliente   *gateway.Cliente `json:"cliente,omitempty"`
	Deletable bool             `json:"deletable"`
}

// WritebackResult is the outcome of one background status correction.
type WritebackResult struct {
	IDFactura int
	Err       error
}

// ListResult is the two-stage reconciliation output: the corrected view to
// render immediately, and the write-back outcomes to inspect separately.
type ListResult struct {
	Facturas   []View
	Writebacks []WritebackResult
	// SyncSkipped is set when the debtor list was unavailable and the
	// statuses may be stale.
	SyncSkipped bool
}

// FilterClientes narrows the selection list by display name or
// identification number. Case-insensitive, purely local.
func FilterClientes(clientes []gateway.Cliente, q string) []gateway.Cliente {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return clientes
	}
	out := make([]gateway.Cliente, 0, len(clientes))
	for _, c := range clientes {
		display := strings.ToLower(c.Nombre + " " + c.Apellido)
		if strings.Contains(display, q) || strings.Contains(strings.ToLower(c.NumeroIdentificacion), q) {
			out = append(out, c)
		}
	}
	return out
}

func containsFold(s, q string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(q)))
}

// FilterProductos narrows the product picker by name.
func FilterProductos(productos []gateway.Producto, q string) []gateway.Producto {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return productos
	}
	out := make([]gateway.Producto, 0, len(productos))
	for _, p := range productos {
		if strings.Contains(strings.ToLower(p.Nombre), q) {
			out = append(out, p)
		}
	}
	return out
}
