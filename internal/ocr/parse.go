package ocr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)

	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)total\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)valor\s*(?:total)?\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`(?i)importe\s*:?\s*\$?\s*([\d.,]+)`),
		regexp.MustCompile(`\$\s*([\d.,]+)`),
	}

	providerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)raz[oó]n\s+social\s*:?\s*(.+)`),
		regexp.MustCompile(`(?i)proveedor\s*:?\s*(.+)`),
		regexp.MustCompile(`(?i)empresa\s*:?\s*(.+)`),
		regexp.MustCompile(`(?i)emisor\s*:?\s*(.+)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)fecha\s*(?:de\s+emisi[oó]n)?\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{4})`),
		regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`),
	}

	invoiceNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)factura\s*(?:de\s+venta)?\s*(?:no\.?|n[uú]mero|#)?\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)no\.?\s*factura\s*:?\s*([A-Z0-9-]+)`),
		regexp.MustCompile(`(?i)comprobante\s*(?:no\.?|#)?\s*:?\s*([A-Z0-9-]+)`),
	}

	nitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)nit\s*\.?\s*:?\s*([\d.]+-?\d?)`),
		regexp.MustCompile(`(?i)c\.?c\.?\s*:?\s*([\d.]+)`),
	}

	paymentPatterns = []struct {
		re     *regexp.Regexp
		method domain.PaymentMethod
	}{
		{regexp.MustCompile(`(?i)\befectivo\b`), domain.PaymentCash},
		{regexp.MustCompile(`(?i)tarjeta\s+(?:de\s+)?cr[eé]dito`), domain.PaymentCardPersonal},
		{regexp.MustCompile(`(?i)tarjeta\s+(?:de\s+)?d[eé]bito`), domain.PaymentCardPersonal},
		{regexp.MustCompile(`(?i)transferencia`), domain.PaymentTransfer},
		{regexp.MustCompile(`(?i)\bcheque\b`), domain.PaymentCheck},
		{regexp.MustCompile(`(?i)\bpse\b`), domain.PaymentTransfer},
	}

	categoryKeywords = map[domain.ExpenseCategory][]string{
		domain.CategoryTransport: {
			"TAXI", "UBER", "DIDI", "CABIFY", "BUS", "PEAJE", "PARQUEADERO",
			"GASOLINA", "COMBUSTIBLE", "TERPEL", "TEXACO", "MOBIL", "VUELO", "AVIANCA", "LATAM",
		},
		domain.CategoryMeals: {
			"RESTAURANTE", "COMIDA", "ALMUERZO", "DESAYUNO", "CENA", "CAFETERIA",
			"CAFE", "PANADERIA", "DOMICILIO", "RAPPI",
		},
		domain.CategoryAccommodation: {
			"HOTEL", "HOSTAL", "ALOJAMIENTO", "HOSPEDAJE", "AIRBNB",
		},
		domain.CategorySupplies: {
			"PAPELERIA", "UTILES", "OFICINA", "SUMINISTROS", "FERRETERIA",
			"SUPERMERCADO", "EXITO", "CARULLA", "OLIMPICA", "D1", "ARA",
		},
		domain.CategoryCommunication: {
			"CLARO", "MOVISTAR", "TIGO", "ETB", "INTERNET", "TELEFONIA", "CELULAR", "RECARGA",
		},
	}
)

// Parser turns raw invoice text into structured candidate fields.
// Every field is independent: a miss on one never blocks the others.
type Parser struct{}

// NewParser creates a field parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse scans the text with each field pattern and scores the result.
func (p *Parser) Parse(text string) *domain.ExtractionResult {
	clean := whitespaceRe.ReplaceAllString(text, " ")

	result := &domain.ExtractionResult{
		RawText:  text,
		Category: domain.CategoryOther,
	}

	result.Amount = parseAmount(clean)
	result.Provider = parseProvider(text)
	result.Date = parseDate(clean)
	result.InvoiceNumber = parseInvoiceNumber(clean)
	result.NIT = parseNIT(clean)
	result.PaymentMethod = parsePaymentMethod(clean)
	result.Category = classifyCategory(clean)
	result.Confidence = scoreConfidence(result)

	return result
}

func parseAmount(text string) *float64 {
	for _, re := range amountPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := normalizeAmount(m[1]); ok && v > 0 {
			return &v
		}
	}
	return nil
}

// normalizeAmount converts Colombian number formatting to a float:
// thousands use '.' and decimals use ',' (1.250.000,50).
func normalizeAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if dots := strings.Count(s, "."); dots > 1 {
		s = strings.ReplaceAll(s, ".", "")
	} else if dots == 1 {
		// A single dot followed by exactly three digits is a thousands
		// separator, not a decimal point.
		if idx := strings.Index(s, "."); len(s)-idx-1 == 3 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseProvider(text string) *string {
	for _, re := range providerPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if idx := strings.IndexAny(name, "\n\r"); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if len(name) >= 2 {
			if len(name) > 100 {
				name = strings.TrimSpace(name[:100])
			}
			return &name
		}
	}
	return nil
}

func parseDate(text string) *time.Time {
	layouts := []string{"02/01/2006", "02-01-2006", "2/1/2006", "2-1-2006", "02/01/06", "02-01-06", "2006-01-02"}
	for _, re := range datePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, m[1]); err == nil {
				return &t
			}
		}
	}
	return nil
}

func parseInvoiceNumber(text string) *string {
	for _, re := range invoiceNumberPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		num := strings.TrimSpace(m[1])
		if num != "" && !strings.EqualFold(num, "de") && !strings.EqualFold(num, "no") {
			return &num
		}
	}
	return nil
}

func parseNIT(text string) *string {
	for _, re := range nitPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		nit := strings.TrimSpace(m[1])
		if len(strings.Trim(nit, ".-")) >= 6 {
			return &nit
		}
	}
	return nil
}

func parsePaymentMethod(text string) *domain.PaymentMethod {
	for _, p := range paymentPatterns {
		if p.re.MatchString(text) {
			m := p.method
			return &m
		}
	}
	return nil
}

func classifyCategory(text string) domain.ExpenseCategory {
	upper := strings.ToUpper(text)
	best := domain.CategoryOther
	bestHits := 0
	for category, keywords := range categoryKeywords {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(upper, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best = category
			bestHits = hits
		}
	}
	return best
}

// scoreConfidence adds a fixed weight for each field the parser found.
func scoreConfidence(r *domain.ExtractionResult) float64 {
	score := 0.0
	if r.Amount != nil {
		score += 0.3
	}
	if r.Provider != nil {
		score += 0.25
	}
	if r.Date != nil {
		score += 0.15
	}
	if r.InvoiceNumber != nil {
		score += 0.1
	}
	if r.NIT != nil {
		score += 0.1
	}
	if r.PaymentMethod != nil {
		score += 0.05
	}
	if r.Category != domain.CategoryOther {
		score += 0.05
	}
	if score > 1.0 {
		score = 1.0
	}
	return math.Round(score*100) / 100
}
