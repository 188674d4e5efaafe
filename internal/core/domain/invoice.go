package domain

import (
	"errors"
	"time"
)

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	StatusPending   InvoiceStatus = "pendiente"
	StatusValidated InvoiceStatus = "validada"
	StatusRejected  InvoiceStatus = "rechazada"
)

// validTransitions defines the allowed state machine transitions. Both
// validada and rechazada are terminal: nothing leaves them.
var validTransitions = map[InvoiceStatus][]InvoiceStatus{
	StatusPending: {StatusValidated, StatusRejected},
}

var ErrInvoiceNotFound = errors.New("invoice not found")
var ErrInvoiceNotPending = errors.New("invoice is not pending")
var ErrInvalidStatus = errors.New("invalid invoice status")
var ErrInvalidAmount = errors.New("amount must be greater than zero")
var ErrInvalidProvider = errors.New("provider must be at least 2 characters")
var ErrAttachmentNotFound = errors.New("invoice has no attachment")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s InvoiceStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// PaymentMethod is how an expense was paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "efectivo"
	PaymentCardBST      PaymentMethod = "tarjeta_bst"
	PaymentCardPersonal PaymentMethod = "tarjeta_personal"
	PaymentTransfer     PaymentMethod = "transferencia"
	PaymentCheck        PaymentMethod = "cheque"
)

// ExpenseCategory classifies what the expense was for.
type ExpenseCategory string

const (
	CategoryTransport     ExpenseCategory = "transporte"
	CategoryMeals         ExpenseCategory = "alimentacion"
	CategoryAccommodation ExpenseCategory = "hospedaje"
	CategorySupplies      ExpenseCategory = "suministros"
	CategoryCommunication ExpenseCategory = "comunicacion"
	CategoryOther         ExpenseCategory = "otros"
)

// Label maps translate enum values into the human-readable strings the
// back office renders. Unknown values fall through to the raw value.

var statusLabels = map[InvoiceStatus]string{
	StatusPending:   "Pendiente",
	StatusValidated: "Validada",
	StatusRejected:  "Rechazada",
}

var paymentMethodLabels = map[PaymentMethod]string{
	PaymentCash:         "Efectivo",
	PaymentCardBST:      "Tarjeta BST",
	PaymentCardPersonal: "Tarjeta personal",
	PaymentTransfer:     "Transferencia",
	PaymentCheck:        "Cheque",
}

var categoryLabels = map[ExpenseCategory]string{
	CategoryTransport:     "Transporte",
	CategoryMeals:         "Alimentación",
	CategoryAccommodation: "Hospedaje",
	CategorySupplies:      "Suministros",
	CategoryCommunication: "Comunicación",
	CategoryOther:         "Otros",
}

func (s InvoiceStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (m PaymentMethod) Label() string {
	if l, ok := paymentMethodLabels[m]; ok {
		return l
	}
	return string(m)
}

func (c ExpenseCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ValidPaymentMethod reports whether m is one of the known payment methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	_, ok := paymentMethodLabels[m]
	return ok
}

// ValidCategory reports whether c is one of the known expense categories.
func ValidCategory(c ExpenseCategory) bool {
	_, ok := categoryLabels[c]
	return ok
}

// UserSummary is the denormalized owner view embedded in an invoice for display.
type UserSummary struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
}

// Invoice is the core aggregate root: one expense record submitted by a user,
// optionally backed by an uploaded document, subject to validation.
type Invoice struct {
	ID            int64           `json:"id" bson:"_id"`
	UserID        int64           `json:"user_id" bson:"user_id"`
	Date          time.Time       `json:"date" bson:"date"`
	Provider      string          `json:"provider" bson:"provider"`
	Amount        float64         `json:"amount" bson:"amount"`
	PaymentMethod PaymentMethod   `json:"payment_method" bson:"payment_method"`
	Category      ExpenseCategory `json:"category" bson:"category"`
	Description   string          `json:"description,omitempty" bson:"description,omitempty"`
	// FilePath is the server-side location of the uploaded attachment.
	// Once set it is never replaced; there is no re-upload flow.
	FilePath string        `json:"file_path,omitempty" bson:"file_path,omitempty"`
	NIT      string        `json:"nit,omitempty" bson:"nit,omitempty"`
	Status   InvoiceStatus `json:"status" bson:"status"`
	// ValidationNotes is written exactly once, on the pending→terminal
	// transition, and is not editable afterwards.
	ValidationNotes string     `json:"validation_notes,omitempty" bson:"validation_notes,omitempty"`
	ValidatedAt     *time.Time `json:"validated_at,omitempty" bson:"validated_at,omitempty"`
	// OCRData holds the raw extraction result when the invoice was created
	// through the OCR intake pipeline; nil otherwise.
	OCRData       *ExtractionResult `json:"ocr_data,omitempty" bson:"ocr_data,omitempty"`
	OCRConfidence float64           `json:"ocr_confidence,omitempty" bson:"ocr_confidence,omitempty"`
	CreatedAt     time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" bson:"updated_at"`
	User          UserSummary       `json:"user" bson:"user"`
}
