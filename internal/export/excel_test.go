package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

func sampleInvoices() []*domain.Invoice {
	return []*domain.Invoice{
		{
			ID:            1,
			Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Provider:      "Office Depot",
			NIT:           "900123456-7",
			Amount:        150000,
			PaymentMethod: domain.PaymentCash,
			Category:      domain.CategorySupplies,
			Status:        domain.StatusPending,
			CreatedAt:     time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC),
			User:          domain.UserSummary{Name: "Ana García", Email: "ana@bst.com.co"},
		},
		{
			ID:            2,
			Date:          time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
			Provider:      "Hotel Estelar",
			Amount:        320000.50,
			PaymentMethod: domain.PaymentTransfer,
			Category:      domain.CategoryAccommodation,
			Status:        domain.StatusValidated,
			CreatedAt:     time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
			User:          domain.UserSummary{Name: "Luis Pérez", Email: "luis@bst.com.co"},
		},
	}
}

func TestExcelExporter_Export(t *testing.T) {
	dir := t.TempDir()
	exporter, err := NewExcelExporter(dir)
	if err != nil {
		t.Fatal(err)
	}

	path, err := exporter.Export(sampleInvoices())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("workbook outside export dir: %s", path)
	}
	if !strings.HasSuffix(path, ".xlsx") {
		t.Errorf("expected .xlsx file, got %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][4] != "Proveedor" {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][1] != "Ana García" {
		t.Errorf("row 1 user = %q", rows[1][1])
	}
	if rows[2][7] != "Transferencia" {
		t.Errorf("row 2 payment label = %q", rows[2][7])
	}
	if rows[2][9] != "Validada" {
		t.Errorf("row 2 status label = %q", rows[2][9])
	}
}

func TestExcelExporter_EmptySet(t *testing.T) {
	exporter, _ := NewExcelExporter(t.TempDir())

	path, err := exporter.Export(nil)
	if err != nil {
		t.Fatalf("export empty: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("workbook missing: %v", err)
	}
}
