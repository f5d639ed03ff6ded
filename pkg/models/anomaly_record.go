package models

import (
	"time"

	"github.com/google/uuid"
)

// AnomalyRecord is a persisted case derived from one completed job whose
// result flagged an anomaly. Its ID equals the originating job's ID, which is
// the dedup key: at most one record per job ever exists, no matter how many
// pollers observe the completion.
type AnomalyRecord struct {
	ID              uuid.UUID `db:"id"               json:"id"`
	SubjectID       string    `db:"subject_id"       json:"subject_id"`
	SubjectName     string    `db:"subject_name"     json:"subject_name"`
	Modality        string    `db:"modality"         json:"modality"`
	Severity        string    `db:"severity"         json:"severity"`
	ConfidenceScore float64   `db:"confidence_score" json:"confidence_score"`
	Findings        string    `db:"findings"         json:"findings"`
	RecordedAt      time.Time `db:"recorded_at"      json:"recorded_at"`
}
