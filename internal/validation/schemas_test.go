package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStructReturnsNilForValidForm(t *testing.T) {
	form := ClienteForm{
		Nombre:               "Ana",
		Apellido:             "Mora",
		Direccion:            "Av. Amazonas 123",
		Telefono:             "0991234567",
		CorreoElectronico:    "ana@example.com",
		TipoIdentificacion:   "Cédula",
		NumeroIdentificacion: "1712345678",
		Estado:               "Activo",
		IDTipoCliente:        1,
	}
	if errs := Struct(form); errs != nil {
		t.Fatalf("expected valid form, got %v", errs)
	}
}

func TestStructKeysErrorsByJSONName(t *testing.T) {
	form := ClienteForm{
		Nombre:             "A",
		Telefono:           "abc",
		CorreoElectronico:  "not-an-email",
		TipoIdentificacion: "DNI",
	}
	errs := Struct(form)
	if errs == nil {
		t.Fatalf("expected errors")
	}
	for _, key := range []string{"nombre", "apellido", "telefono", "correo_electronico", "tipo_identificacion", "estado", "id_tipo_cliente"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("expected error keyed %q, got %v", key, errs)
		}
	}
}

func TestStructRejectsNonDigitPhones(t *testing.T) {
	for _, tel := range []string{"-123456", "+1234567", "12.34567", "123456", "12345678901", "099 123 45"} {
		form := ClienteForm{
			Nombre:               "Ana",
			Apellido:             "Mora",
			Direccion:            "Av. Amazonas 123",
			Telefono:             tel,
			CorreoElectronico:    "ana@example.com",
			TipoIdentificacion:   "Cédula",
			NumeroIdentificacion: "1712345678",
			Estado:               "Activo",
			IDTipoCliente:        1,
		}
		errs := Struct(form)
		if errs == nil {
			t.Fatalf("expected telefono %q rejected", tel)
		}
		if _, ok := errs["telefono"]; !ok {
			t.Fatalf("expected telefono error for %q, got %v", tel, errs)
		}
	}
}

func TestStructIndexesNestedDetalles(t *testing.T) {
	form := FacturaForm{
		Header: FacturaHeaderForm{IDCliente: 1, TipoPago: "Efectivo", EstadoFactura: "Pendiente"},
		Detalles: []DetalleForm{
			{IDProducto: 1, Cantidad: 1},
			{IDProducto: 0, Cantidad: 0},
		},
	}
	errs := Struct(form)
	if errs == nil {
		t.Fatalf("expected errors")
	}
	if _, ok := errs["detalles.1.id_producto"]; !ok {
		t.Fatalf("expected indexed detail error, got %v", errs)
	}
	if _, ok := errs["detalles.1.cantidad"]; !ok {
		t.Fatalf("expected indexed quantity error, got %v", errs)
	}
}

func TestStructRequiresAtLeastOneDetalle(t *testing.T) {
	form := FacturaForm{
		Header: FacturaHeaderForm{IDCliente: 1, TipoPago: "Credito", EstadoFactura: "Pendiente"},
	}
	errs := Struct(form)
	if errs == nil {
		t.Fatalf("expected errors")
	}
	if _, ok := errs["detalles"]; !ok {
		t.Fatalf("expected detalles error, got %v", errs)
	}
}

func TestTipoClienteFormRejectsNegativeLimit(t *testing.T) {
	form := TipoClienteForm{Nombre: "VIP", MontoMaximo: decimal.NewFromInt(-1)}
	errs := Struct(form)
	if errs == nil {
		t.Fatalf("expected errors")
	}
	if _, ok := errs["monto_maximo"]; !ok {
		t.Fatalf("expected monto_maximo error, got %v", errs)
	}
}
