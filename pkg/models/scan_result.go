package models

// Severity levels reported by the analysis engine.
const (
	SeverityNone   = "none"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// ScanResult is the analysis payload attached to a completed job. The engine
// is a black box; only these fields carry meaning for orchestration, the rest
// are advisory and passed through to callers untouched.
type ScanResult struct {
	AnomalyDetected  bool     `json:"anomaly_detected"`
	Severity         string   `json:"severity"`
	ConfidenceScore  float64  `json:"confidence_score"`
	Findings         string   `json:"findings"`
	Modality         string   `json:"modality,omitempty"`
	AnatomicalRegion string   `json:"anatomical_region,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
}
