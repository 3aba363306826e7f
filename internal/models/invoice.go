package models

import "time"

// InvoiceStatus is the payment state of an issued invoice.
type InvoiceStatus string

const (
	InvoiceDraft   InvoiceStatus = "DRAFT"
	InvoiceSent    InvoiceStatus = "SENT"
	InvoicePaid    InvoiceStatus = "PAID"
	InvoiceVoid    InvoiceStatus = "VOID"
	InvoiceOverdue InvoiceStatus = "OVERDUE"
)

// Invoice is one bill issued against a booking. Amounts are cents to keep
// the ledger exact.
type Invoice struct {
	ID            string        `db:"id" json:"id"`
	BookingID     string        `db:"booking_id" json:"booking_id"`
	InvoiceNumber string        `db:"invoice_number" json:"invoice_number"`
	ClientName    string        `db:"client_name" json:"client_name"`
	AmountCents   int64         `db:"amount_cents" json:"amount_cents"`
	DiscountNote  string        `db:"discount_note" json:"discount_note"`
	Status        InvoiceStatus `db:"status" json:"status"`
	IssuedAt      time.Time     `db:"issued_at" json:"issued_at"`
	DueAt         time.Time     `db:"due_at" json:"due_at"`
	PaidAt        *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// InvoiceFilter narrows down invoices for the ledger view.
type InvoiceFilter struct {
	Status   *InvoiceStatus
	Page     int
	PageSize int
}
