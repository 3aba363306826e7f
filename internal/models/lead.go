package models

import "time"

// LeadStatus is the follow-up state of a contact-form lead.
type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQuoted    LeadStatus = "QUOTED"
	LeadWon       LeadStatus = "WON"
	LeadLost      LeadStatus = "LOST"
)

// Lead is a prospective client captured from the marketing site.
type Lead struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	Source    string     `db:"source" json:"source"`
	Status    LeadStatus `db:"status" json:"status"`
	Notes     string     `db:"notes" json:"notes"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// LeadFilter narrows down leads for the CRM table.
type LeadFilter struct {
	Status   *LeadStatus
	Search   string
	Page     int
	PageSize int
}
