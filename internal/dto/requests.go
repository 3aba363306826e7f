package dto

// BookingIntakeRequest is the public scheduler submission. Dates travel as
// plain YYYY-MM-DD strings so the client's timezone never shifts the day.
type BookingIntakeRequest struct {
	ClientName     string `json:"client_name" validate:"required,max=200"`
	Email          string `json:"email" validate:"required,email"`
	BookTitle      string `json:"book_title" validate:"required,max=300"`
	WordCount      int    `json:"word_count" validate:"min=0"`
	StartDate      string `json:"start_date" validate:"required"`
	DaysNeeded     int    `json:"days_needed" validate:"min=0"`
	NarrationStyle string `json:"narration_style" validate:"required,max=100"`
	Genre          string `json:"genre" validate:"max=100"`
	Notes          string `json:"notes" validate:"max=4000"`
	IsReturning    bool   `json:"is_returning"`
	ClientType     string `json:"client_type" validate:"max=100"`
}

// EstimateRequest asks how many recording days a manuscript needs.
type EstimateRequest struct {
	WordCount int `json:"word_count" validate:"min=0"`
}

// BookingStatusRequest moves a booking through the pipeline.
type BookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ProductionUpdateRequest records progress on a production task.
type ProductionUpdateRequest struct {
	Stage         string  `json:"stage" validate:"required"`
	FinishedHours float64 `json:"finished_hours" validate:"min=0"`
	ChaptersDone  int     `json:"chapters_done" validate:"min=0"`
	ChaptersTotal int     `json:"chapters_total" validate:"min=0"`
	Notes         string  `json:"notes" validate:"max=4000"`
}

// BlockoutRequest creates or updates a manual calendar block-out.
type BlockoutRequest struct {
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=300"`
}

// LeadRequest creates or updates a CRM lead.
type LeadRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"required,email"`
	Source string `json:"source" validate:"max=100"`
	Status string `json:"status" validate:"omitempty"`
	Notes  string `json:"notes" validate:"max=4000"`
}

// InvoiceCreateRequest issues an invoice against a booking.
type InvoiceCreateRequest struct {
	BookingID   string `json:"booking_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=1"`
	DueInDays   int    `json:"due_in_days" validate:"min=0"`
}

// InvoiceStatusRequest updates the payment state of an invoice.
type InvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// LedgerExportRequest kicks off a background ledger export.
type LedgerExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// ContentPageRequest creates or updates a marketing-site page.
type ContentPageRequest struct {
	Title     string `json:"title" validate:"required,max=300"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}
