// Package export writes invoice reports as Excel workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

const sheetName = "Facturas"

var headers = []string{
	"ID", "Usuario", "Email", "Fecha", "Proveedor", "NIT", "Monto",
	"Método de Pago", "Categoría", "Estado", "Descripción", "Fecha Creación",
}

// ExcelExporter writes invoices into timestamped .xlsx files under a base
// directory.
type ExcelExporter struct {
	dir string
}

// NewExcelExporter creates the export directory if needed.
func NewExcelExporter(dir string) (*ExcelExporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &ExcelExporter{dir: dir}, nil
}

// Export writes the invoices to a new workbook and returns its path.
func (e *ExcelExporter) Export(invoices []*domain.Invoice) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return "", fmt.Errorf("header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return "", err
		}
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, inv := range invoices {
		values := []any{
			inv.ID,
			inv.User.Name,
			inv.User.Email,
			inv.Date.Format("2006-01-02"),
			inv.Provider,
			inv.NIT,
			inv.Amount,
			inv.PaymentMethod.Label(),
			inv.Category.Label(),
			inv.Status.Label(),
			inv.Description,
			inv.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return "", err
			}
		}
	}

	// Reasonable default widths; the report is meant to open readable.
	_ = f.SetColWidth(sheetName, "B", "C", 25)
	_ = f.SetColWidth(sheetName, "E", "E", 30)
	_ = f.SetColWidth(sheetName, "H", "L", 18)

	path := filepath.Join(e.dir, fmt.Sprintf("facturas_%s.xlsx", time.Now().UTC().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
