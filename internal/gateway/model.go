package gateway

import (
	"github.com/shopspring/decimal"
)

// TipoCliente caps the credit a class of clients may carry.
type TipoCliente struct {
	IDTipCli    int             `json:"id_tipcli"`
	Nombre      string          `json:"nombre"`
	MontoMaximo decimal.Decimal `json:"monto_maximo"`

	// EnUso is derived locally by scanning clientes; the remote API rejects
	// deletes of types still referenced.
	EnUso bool `json:"en_uso,omitempty"`
}

// Cliente is a customer record as served by the APDIS API.
type Cliente struct {
	IDCliente            int    `json:"id_cliente"`
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

// Factura is a persisted invoice header.
type Factura struct {
	IDFactura     int             `json:"id_factura"`
	IDCliente     int             `json:"id_cliente"`
	NumeroFactura string          `json:"numero_factura"`
	FechaEmision  string          `json:"fecha_emision"`
	MontoTotal    decimal.Decimal `json:"monto_total"`
	TipoPago      string          `json:"tipo_pago"`
	EstadoFactura string          `json:"estado_factura"`
}

// DetalleFactura is one resolved invoice line.
type DetalleFactura struct {
	IDDetalleFactura int             `json:"id_detalle_factura"`
	IDFactura        int             `json:"id_factura"`
	IDProducto       int             `json:"id_producto"`
	Nombre           string          `json:"nombre"`
	Cantidad         int             `json:"cantidad"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

// Producto is the single internal product shape. The upstream catalogs
// disagree on field names; normalization happens in productos.go and nothing
// past that boundary sees the raw wire form.
type Producto struct {
	ID     int             `json:"id"`
	Nombre string          `json:"nombre"`
	Precio decimal.Decimal `json:"precio"`
	Stock  int             `json:"stock"`
	IVA    bool            `json:"iva"`
	Estado string          `json:"estado"`
}

// Deudor is the accounts-receivable view of one client's outstanding credit.
type Deudor struct {
	IDCliente          int               `json:"id_cliente"`
	FacturasPendientes []FacturaPendiente `json:"facturas_pendientes"`
}

// FacturaPendiente references one invoice the AR system still considers open.
type FacturaPendiente struct {
	IDFactura int `json:"id_factura"`
}

// Permiso is one permission granted by the security service.
type Permiso struct {
	IDPermiso     int    `json:"id_permiso"`
	NombrePermiso string `json:"nombre_permiso"`
	Descripcion   string `json:"descripcion"`
	URLPermiso    string `json:"url_permiso"`
	Estado        bool   `json:"estado"`
	IDModulo      string `json:"id_modulo"`
}

// Payment types and invoice states accepted by the invoice API.
const (
	PagoEfectivo      = "Efectivo"
	PagoCredito       = "Credito"
	PagoTarjeta       = "Tarjeta"
	PagoTransferencia = "Transferencia"

	EstadoPendiente = "Pendiente"
	EstadoPagada    = "Pagada"
	// The AR sync writes the masculine form; both appear in stored data.
	EstadoPagado  = "Pagado"
	EstadoAnulada = "Anulada"

	EstadoActivo   = "Activo"
	EstadoInactivo = "Inactivo"
)

// EsPagada accepts both gender forms the upstream stores.
func EsPagada(estado string) bool {
	return estado == EstadoPagada || estado == EstadoPagado
}
