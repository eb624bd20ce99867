package factura

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX writes the invoice list as a spreadsheet. One row per invoice,
// client already joined; the caller decides whether to include stale rows
// when the sync was skipped.
func ExportXLSX(w io.Writer, views []View) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Facturas"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("exportar facturas: %w", err)
	}

	headers := []string{"No.", "Cliente", "Identificación", "Fecha de emisión", "Tipo de pago", "Estado", "Monto total"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("exportar facturas: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("exportar facturas: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	for row, v := range views {
		cliente := ""
		identificacion := ""
		if v.Cliente != nil {
			cliente = v.Cliente.Nombre + " " + v.Cliente.Apellido
			identificacion = v.Cliente.NumeroIdentificacion
		}
		monto, _ := v.MontoTotal.Float64()
		values := []any{
			v.NumeroFactura,
			cliente,
			identificacion,
			v.FechaEmision,
			v.TipoPago,
			v.EstadoFactura,
			monto,
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return fmt.Errorf("exportar facturas: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("exportar facturas: %w", err)
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "G", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("exportar facturas: %w", err)
	}
	return nil
}
