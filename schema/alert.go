package schema

import "time"

// AnomalyAlert records one detection of anomalous activity. Alerts follow an
// append model: recomputation never mutates an existing alert, and
// acknowledgment is the only state transition (one-way, never auto-reverted).
type AnomalyAlert struct {
	ID             int64      `json:"id"`
	AlertType      AlertType  `json:"alert_type"`
	EntityKey      string     `json:"entity_key"`     // Canonical topic key the anomaly was observed on
	CurrentValue   float64    `json:"current_value"`  // Observed value at detection
	BaselineValue  float64    `json:"baseline_value"` // Expected value from the baseline
	ZScore         float64    `json:"z_score"`
	Severity       Severity   `json:"severity"`
	IsAcknowledged bool       `json:"is_acknowledged"`
	AckBy          string     `json:"ack_by,omitempty"`
	AckAt          *time.Time `json:"ack_at,omitempty"`
	DetectedAt     time.Time  `json:"detected_at"`
}
