package factura

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/apdis/apdis-manager/internal/gateway"
)

// Estado is the lifecycle state of one draft.
type Estado int

const (
	// EstadoEdicion accepts line mutations.
	EstadoEdicion Estado = iota
	// EstadoValidando runs the pre-submit checks.
	EstadoValidando
	// EstadoEnviando is in-flight against the remote API.
	EstadoEnviando
	// EstadoConfirmada is terminal: the remote API owns the invoice now.
	EstadoConfirmada
	// EstadoFallida returns to edition with field errors attached.
	EstadoFallida
)

// CampoError is a validation failure scoped to one input field.
type CampoError struct {
	Campo   string
	Mensaje string
}

func (e *CampoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Campo, e.Mensaje)
}

// Linea is one draft line. A line without a product contributes zero to the
// total and blocks submission.
type Linea struct {
	IDProducto int
	Cantidad   int
}

// Draft assembles an invoice for the lifetime of one form session. It owns
// the header and lines until Submit hands them to the remote API; drafts are
// never persisted locally.
type Draft struct {
	Header  Header
	Lineas  []Linea
	catalog map[int]gateway.Producto
	estado  Estado
	errores map[string]string
}

// Header is the draft header before submission.
type Header struct {
	IDCliente     int
	TipoPago      string
	EstadoFactura string
}

// NewDraft starts a draft with one empty line against the given catalog.
func NewDraft(productos []gateway.Producto) *Draft {
	catalog := make(map[int]gateway.Producto, len(productos))
	for _, p := range productos {
		catalog[p.ID] = p
	}
	return &Draft{
		Header:  Header{EstadoFactura: gateway.EstadoPendiente},
		Lineas:  []Linea{{Cantidad: 1}},
		catalog: catalog,
		estado:  EstadoEdicion,
		errores: make(map[string]string),
	}
}

// State returns the current lifecycle state.
func (d *Draft) State() Estado {
	return d.estado
}

// Errores returns the field errors attached by the last failed transition.
func (d *Draft) Errores() map[string]string {
	return d.errores
}

// AddLine appends an empty line with quantity 1. There is no upper bound on
// line count.
func (d *Draft) AddLine() {
	d.Lineas = append(d.Lineas, Linea{Cantidad: 1})
}

// RemoveLine removes the line at index. The last remaining line cannot be
// removed: an invoice always carries at least one line.
func (d *Draft) RemoveLine(index int) error {
	if index < 0 || index >= len(d.Lineas) {
		return fmt.Errorf("factura: línea %d fuera de rango", index)
	}
	if len(d.Lineas) == 1 {
		return &CampoError{
			Campo:   lineField(index, "id_producto"),
			Mensaje: "La factura debe tener al menos un detalle.",
		}
	}
	d.Lineas = append(d.Lineas[:index], d.Lineas[index+1:]...)
	return nil
}

// SetLineProduct selects a product for the line. The same product may not
// appear on two lines; increase the quantity instead.
func (d *Draft) SetLineProduct(index, productoID int) error {
	if index < 0 || index >= len(d.Lineas) {
		return fmt.Errorf("factura: línea %d fuera de rango", index)
	}
	if _, ok := d.catalog[productoID]; !ok {
		return &CampoError{
			Campo:   lineField(index, "id_producto"),
			Mensaje: "Producto no disponible.",
		}
	}
	for i, l := range d.Lineas {
		if i != index && l.IDProducto == productoID {
			return &CampoError{
				Campo:   lineField(index, "id_producto"),
				Mensaje: "El producto ya está en la factura; aumente la cantidad.",
			}
		}
	}
	d.Lineas[index].IDProducto = productoID
	return nil
}

// SetLineQuantity sets the quantity for the line, capped by the selected
// product's available stock at this moment. Not atomic against concurrent
// stock changes; the remote API has the final word.
func (d *Draft) SetLineQuantity(index, cantidad int) error {
	if index < 0 || index >= len(d.Lineas) {
		return fmt.Errorf("factura: línea %d fuera de rango", index)
	}
	if cantidad < 1 {
		return &CampoError{
			Campo:   lineField(index, "cantidad"),
			Mensaje: "La cantidad debe ser al menos 1.",
		}
	}
	if p, ok := d.catalog[d.Lineas[index].IDProducto]; ok && cantidad > p.Stock {
		return &CampoError{
			Campo:   lineField(index, "cantidad"),
			Mensaje: fmt.Sprintf("Stock insuficiente: quedan %d unidades.", p.Stock),
		}
	}
	d.Lineas[index].Cantidad = cantidad
	return nil
}

// LineSubtotal returns unit price × quantity, zero when no product selected.
func (d *Draft) LineSubtotal(index int) decimal.Decimal {
	if index < 0 || index >= len(d.Lineas) {
		return decimal.Zero
	}
	l := d.Lineas[index]
	p, ok := d.catalog[l.IDProducto]
	if !ok {
		return decimal.Zero
	}
	return p.Precio.Mul(decimal.NewFromInt(int64(l.Cantidad)))
}

// Total sums all line subtotals. Recomputed on every call rather than cached;
// drafts are small.
func (d *Draft) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range d.Lineas {
		total = total.Add(d.LineSubtotal(i))
	}
	return total
}

// Validate runs every pre-submit check and transitions the draft. A nil
// return means the draft is ready to send.
func (d *Draft) Validate() map[string]string {
	d.estado = EstadoValidando
	errs := make(map[string]string)

	if d.Header.IDCliente < 1 {
		errs["header.id_cliente"] = "Debe seleccionar un cliente."
	}
	if !validTipoPago(d.Header.TipoPago) {
		errs["header.tipo_pago"] = "El tipo de pago es requerido."
	}
	if !validEstadoFactura(d.Header.EstadoFactura) {
		errs["header.estado_factura"] = "El estado es requerido."
	}

	if len(d.Lineas) == 0 {
		errs["detalles"] = "Debe agregar al menos un detalle a la factura."
	}

	seen := make(map[int]int)
	for i, l := range d.Lineas {
		if l.IDProducto < 1 {
			errs[lineField(i, "id_producto")] = "Debe seleccionar un producto."
			continue
		}
		p, ok := d.catalog[l.IDProducto]
		if !ok {
			errs[lineField(i, "id_producto")] = "Producto no disponible."
			continue
		}
		if prev, dup := seen[l.IDProducto]; dup {
			errs[lineField(i, "id_producto")] = fmt.Sprintf("Producto repetido en la línea %d.", prev+1)
			continue
		}
		seen[l.IDProducto] = i
		if l.Cantidad < 1 {
			errs[lineField(i, "cantidad")] = "La cantidad debe ser al menos 1."
		} else if l.Cantidad > p.Stock {
			errs[lineField(i, "cantidad")] = fmt.Sprintf("Stock insuficiente: quedan %d unidades.", p.Stock)
		}
	}

	if len(errs) > 0 {
		d.estado = EstadoFallida
		d.errores = errs
		return errs
	}
	d.errores = nil
	return nil
}

// markSubmitting transitions into the in-flight state.
func (d *Draft) markSubmitting() {
	d.estado = EstadoEnviando
}

// markCommitted is terminal.
func (d *Draft) markCommitted() {
	d.estado = EstadoConfirmada
}

// markFailed attaches errors and returns the draft to edition.
func (d *Draft) markFailed(errs map[string]string) {
	d.estado = EstadoFallida
	d.errores = errs
}

func lineField(index int, name string) string {
	return fmt.Sprintf("detalles.%d.%s", index, name)
}

func validTipoPago(v string) bool {
	switch v {
	case gateway.PagoEfectivo, gateway.PagoCredito, gateway.PagoTarjeta, gateway.PagoTransferencia:
		return true
	}
	return false
}

func validEstadoFactura(v string) bool {
	switch v {
	case gateway.EstadoPendiente, gateway.EstadoPagada, gateway.EstadoAnulada:
		return true
	}
	return false
}
