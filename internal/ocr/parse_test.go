package ocr

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

const sampleInvoiceText = `FACTURA DE VENTA No. FV-2024-0153
Razón Social: Distribuidora El Éxito S.A.S
NIT: 900.123.456-7
Fecha: 15/03/2024
SUPERMERCADO COMPRA SEMANAL
Forma de pago: EFECTIVO
TOTAL: $1.250.000,50`

func TestParse_FullInvoice(t *testing.T) {
	p := NewParser()
	result := p.Parse(sampleInvoiceText)

	if result.Amount == nil {
		t.Fatal("expected amount to be detected")
	}
	if *result.Amount != 1250000.50 {
		t.Errorf("amount = %v, want 1250000.50", *result.Amount)
	}

	if result.Provider == nil {
		t.Fatal("expected provider to be detected")
	}
	if *result.Provider != "Distribuidora El Éxito S.A.S" {
		t.Errorf("provider = %q", *result.Provider)
	}

	if result.Date == nil {
		t.Fatal("expected date to be detected")
	}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if !result.Date.Equal(want) {
		t.Errorf("date = %v, want %v", result.Date, want)
	}

	if result.InvoiceNumber == nil || *result.InvoiceNumber != "FV-2024-0153" {
		t.Errorf("invoice number = %v, want FV-2024-0153", result.InvoiceNumber)
	}
	if result.NIT == nil || *result.NIT != "900.123.456-7" {
		t.Errorf("nit = %v, want 900.123.456-7", result.NIT)
	}
	if result.PaymentMethod == nil || *result.PaymentMethod != domain.PaymentCash {
		t.Errorf("payment method = %v, want efectivo", result.PaymentMethod)
	}
	if result.Category != domain.CategorySupplies {
		t.Errorf("category = %v, want suministros", result.Category)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0", result.Confidence)
	}
}

func TestParse_FieldsAreIndependent(t *testing.T) {
	p := NewParser()

	// Only an amount is present; every other field stays nil.
	result := p.Parse("TOTAL: $45.000")
	if result.Amount == nil || *result.Amount != 45000 {
		t.Errorf("amount = %v, want 45000", result.Amount)
	}
	if result.Provider != nil {
		t.Errorf("provider = %v, want nil", result.Provider)
	}
	if result.Date != nil {
		t.Errorf("date = %v, want nil", result.Date)
	}
	if result.InvoiceNumber != nil {
		t.Errorf("invoice number = %v, want nil", result.InvoiceNumber)
	}
	if result.NIT != nil {
		t.Errorf("nit = %v, want nil", result.NIT)
	}
	if result.PaymentMethod != nil {
		t.Errorf("payment method = %v, want nil", result.PaymentMethod)
	}
	if result.Category != domain.CategoryOther {
		t.Errorf("category = %v, want otros", result.Category)
	}

	// Only a provider is present; the missing amount does not block it.
	result = p.Parse("Proveedor: Papelería Central Ltda")
	if result.Amount != nil {
		t.Errorf("amount = %v, want nil", result.Amount)
	}
	if result.Provider == nil || *result.Provider != "Papelería Central Ltda" {
		t.Errorf("provider = %v, want Papelería Central Ltda", result.Provider)
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
		ok   bool
	}{
		{"colombian thousands with decimals", "1.250.000,50", 1250000.50, true},
		{"colombian thousands only", "1.250.000", 1250000, true},
		{"single thousands group", "45.000", 45000, true},
		{"comma decimals only", "350,75", 350.75, true},
		{"plain integer", "12000", 12000, true},
		{"plain decimal", "99.5", 99.5, true},
		{"garbage", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeAmount(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreConfidence_Tiers(t *testing.T) {
	amount := 100.0
	provider := "Acme"
	date := time.Now()
	number := "F-1"
	nit := "900123456"
	method := domain.PaymentCash

	tests := []struct {
		name     string
		result   *domain.ExtractionResult
		want     float64
		wantTier domain.ConfidenceTier
	}{
		{
			name: "all fields",
			result: &domain.ExtractionResult{
				Amount: &amount, Provider: &provider, Date: &date,
				InvoiceNumber: &number, NIT: &nit, PaymentMethod: &method,
				Category: domain.CategoryTransport,
			},
			want:     1.0,
			wantTier: domain.TierHigh,
		},
		{
			name: "amount provider date number",
			result: &domain.ExtractionResult{
				Amount: &amount, Provider: &provider, Date: &date,
				InvoiceNumber: &number, Category: domain.CategoryOther,
			},
			want:     0.8,
			wantTier: domain.TierHigh,
		},
		{
			name: "amount provider date",
			result: &domain.ExtractionResult{
				Amount: &amount, Provider: &provider, Date: &date,
				Category: domain.CategoryOther,
			},
			want:     0.7,
			wantTier: domain.TierMedium,
		},
		{
			name: "amount and nit",
			result: &domain.ExtractionResult{
				Amount: &amount, NIT: &nit, Category: domain.CategoryOther,
			},
			want:     0.4,
			wantTier: domain.TierLow,
		},
		{
			name:     "nothing",
			result:   &domain.ExtractionResult{Category: domain.CategoryOther},
			want:     0,
			wantTier: domain.TierLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreConfidence(tt.result)
			if got != tt.want {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
			if tier := domain.ConfidenceToTier(got); tier != tt.wantTier {
				t.Errorf("tier = %v, want %v", tier, tt.wantTier)
			}
		})
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		text string
		want domain.ExpenseCategory
	}{
		{"TAXI AEROPUERTO PEAJE", domain.CategoryTransport},
		{"RESTAURANTE EL CORRAL ALMUERZO", domain.CategoryMeals},
		{"HOTEL DANN CARLTON", domain.CategoryAccommodation},
		{"PAPELERIA NACIONAL UTILES OFICINA", domain.CategorySupplies},
		{"CLARO RECARGA CELULAR", domain.CategoryCommunication},
		{"COMPRA GENERICA", domain.CategoryOther},
	}

	for _, tt := range tests {
		if got := classifyCategory(tt.text); got != tt.want {
			t.Errorf("classifyCategory(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestEngine_SupportedFormat(t *testing.T) {
	e := NewEngine(discardLogger)

	supported := []string{"scan.pdf", "photo.JPG", "r.jpeg", "a.png", "b.tiff", "c.bmp"}
	for _, name := range supported {
		if !e.SupportedFormat(name) {
			t.Errorf("SupportedFormat(%q) = false, want true", name)
		}
	}

	unsupported := []string{"doc.docx", "notes.txt", "archive.zip", "noext"}
	for _, name := range unsupported {
		if e.SupportedFormat(name) {
			t.Errorf("SupportedFormat(%q) = true, want false", name)
		}
	}
}
