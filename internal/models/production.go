package models

import "time"

// ProductionStage tracks where a project sits inside the recording pipeline
// once its booking reaches PRODUCTION.
type ProductionStage string

const (
	StagePrep      ProductionStage = "PREP"
	StageRecording ProductionStage = "RECORDING"
	StageEditing   ProductionStage = "EDITING"
	StageProofing  ProductionStage = "PROOFING"
	StageDelivered ProductionStage = "DELIVERED"
)

// ProductionTask is the companion row created when a booking moves into
// production. One per booking; creation is an idempotent upsert keyed by
// booking id.
type ProductionTask struct {
	ID            string          `db:"id" json:"id"`
	BookingID     string          `db:"booking_id" json:"booking_id"`
	Stage         ProductionStage `db:"stage" json:"stage"`
	FinishedHours float64         `db:"finished_hours" json:"finished_hours"`
	ChaptersDone  int             `db:"chapters_done" json:"chapters_done"`
	ChaptersTotal int             `db:"chapters_total" json:"chapters_total"`
	Notes         string          `db:"notes" json:"notes"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}
