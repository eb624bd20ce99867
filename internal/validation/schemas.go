// Package validation rejects malformed payloads before any network call.
// Failures come back as field-path-keyed Spanish messages so the caller can
// attach each one to the exact offending input.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate

	// Digits only. The built-in numeric tag also admits signs and a decimal
	// point, which are not phone numbers.
	telefonoRegex = regexp.MustCompile(`^\d{7,10}$`)
)

// V returns the shared validator, configured to key errors by json name.
func V() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
		_ = validate.RegisterValidation("telefono", func(fl validator.FieldLevel) bool {
			return telefonoRegex.MatchString(fl.Field().String())
		})
	})
	return validate
}

// TipoClienteForm is the write schema for client types.
type TipoClienteForm struct {
	Nombre      string          `json:"nombre" validate:"required,min=3"`
	MontoMaximo decimal.Decimal `json:"monto_maximo" validate:"gte=0"`
}

// ClienteForm is the write schema for clients.
type ClienteForm struct {
	Nombre               string `json:"nombre" validate:"required,min=2"`
	Apellido             string `json:"apellido" validate:"required,min=2"`
	Direccion            string `json:"direccion" validate:"required,min=5"`
	Telefono             string `json:"telefono" validate:"required,telefono"`
	CorreoElectronico    string `json:"correo_electronico" validate:"required,email"`
	TipoIdentificacion   string `json:"tipo_identificacion" validate:"required,oneof=Cédula RUC Pasaporte"`
	NumeroIdentificacion string `json:"numero_identificacion" validate:"required"`
	Estado               string `json:"estado" validate:"required,oneof=Activo Inactivo"`
	IDTipoCliente        int    `json:"id_tipo_cliente" validate:"required,min=1"`
}

// FacturaHeaderForm is the invoice header schema.
type FacturaHeaderForm struct {
	IDCliente     int    `json:"id_cliente" validate:"required,min=1"`
	TipoPago      string `json:"tipo_pago" validate:"required,oneof=Efectivo Credito Tarjeta Transferencia"`
	EstadoFactura string `json:"estado_factura" validate:"required,oneof=Pendiente Pagada Anulada"`
}

// DetalleForm is one invoice line. The stock ceiling and duplicate-product
// rules need the live catalog and live in the composition engine instead.
type DetalleForm struct {
	IDProducto int `json:"id_producto" validate:"required,min=1"`
	Cantidad   int `json:"cantidad" validate:"required,min=1"`
}

// FacturaForm is the full draft submission schema.
type FacturaForm struct {
	Header   FacturaHeaderForm `json:"header" validate:"required"`
	Detalles []DetalleForm     `json:"detalles" validate:"required,min=1,dive"`
}

// Struct validates v and returns field-keyed Spanish messages, nil when valid.
func Struct(v any) map[string]string {
	err := V().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"general": "Datos inválidos."}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = message(fe)
	}
	return out
}

// fieldPath strips the root struct name: "FacturaForm.detalles[2].cantidad"
// becomes "detalles.2.cantidad".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	ns = strings.ReplaceAll(ns, "]", "")
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Este campo es requerido."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Debe tener al menos %s caracteres.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return "Debe agregar al menos un detalle a la factura."
		}
		return fmt.Sprintf("Debe ser al menos %s.", fe.Param())
	case "max":
		return fmt.Sprintf("No debe exceder %s caracteres.", fe.Param())
	case "gte":
		return "El monto máximo no debe ser negativo."
	case "telefono":
		return "Ingrese un número de teléfono válido (7-10 dígitos)."
	case "email":
		return "Ingrese un correo electrónico válido."
	case "oneof":
		return fmt.Sprintf("Valor inválido; opciones: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "Valor inválido."
	}
}
