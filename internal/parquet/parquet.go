// Package parquet provides data structures and functions for exporting trend
// and alert data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/newsradar/trendwatch/schema"
	"github.com/parquet-go/parquet-go"
)

// TrendEventRow is the flat Parquet projection of a trend event. Structured
// fields (context, rank breakdown) are carried as JSON strings so the row
// stays a simple column set for analytical tools.
type TrendEventRow struct {
	Key             string     `parquet:"topic_key,snappy"`
	CanonicalLabel  string     `parquet:"canonical_label,snappy"`
	DisplayTitle    string     `parquet:"display_title,snappy"`
	LabelQuality    string     `parquet:"label_quality,snappy"`
	ContextJSON     string     `parquet:"context_json,snappy"`
	Velocity        float64    `parquet:"velocity,snappy"`
	TrueZScore      float64    `parquet:"true_z_score,snappy"`
	PoissonSurprise float64    `parquet:"poisson_surprise,snappy"`
	BurstScore      float64    `parquet:"burst_score,snappy"`
	SpikeRatio      float64    `parquet:"spike_ratio,snappy"`
	RankScore       float64    `parquet:"rank_score,snappy"`
	RankBreakdown   string     `parquet:"rank_breakdown,snappy"`
	ConfidenceScore float64    `parquet:"confidence_score,snappy"`
	State           string     `parquet:"state,snappy"`
	IsTrending      bool       `parquet:"is_trending,snappy"`
	IsBreaking      bool       `parquet:"is_breaking,snappy"`
	IsEvergreen     bool       `parquet:"is_evergreen,snappy"`
	TrendingSince   *time.Time `parquet:"trending_since,optional,snappy"`
	Mentions1h      int32      `parquet:"mentions_1h,snappy"`
	Mentions6h      int32      `parquet:"mentions_6h,snappy"`
	Mentions24h     int32      `parquet:"mentions_24h,snappy"`
	SourceTypeCount int32      `parquet:"source_type_count,snappy"`
	FirstSeenAt     time.Time  `parquet:"first_seen_at,snappy"`
	LastSeenAt      time.Time  `parquet:"last_seen_at,snappy"`
	UpdatedAt       time.Time  `parquet:"updated_at,snappy"`
}

// AnomalyAlertRow is the flat Parquet projection of an anomaly alert.
type AnomalyAlertRow struct {
	ID             int64      `parquet:"id,snappy"`
	AlertType      string     `parquet:"alert_type,snappy"`
	EntityKey      string     `parquet:"entity_key,snappy"`
	CurrentValue   float64    `parquet:"current_value,snappy"`
	BaselineValue  float64    `parquet:"baseline_value,snappy"`
	ZScore         float64    `parquet:"z_score,snappy"`
	Severity       string     `parquet:"severity,snappy"`
	IsAcknowledged bool       `parquet:"is_acknowledged,snappy"`
	AckBy          *string    `parquet:"ack_by,optional,snappy"`
	AckAt          *time.Time `parquet:"ack_at,optional,snappy"`
	DetectedAt     time.Time  `parquet:"detected_at,snappy"`
}

// ConvertTrendEvents maps trend events into Parquet rows.
func ConvertTrendEvents(events []schema.TrendEvent) []TrendEventRow {
	rows := make([]TrendEventRow, 0, len(events))
	for _, ev := range events {
		contextJSON, _ := json.Marshal(map[string]any{
			"terms":   ev.ContextTerms,
			"phrases": ev.ContextPhrases,
			"summary": ev.ContextSummary,
		})
		breakdownJSON, _ := json.Marshal(ev.RankBreakdown)
		rows = append(rows, TrendEventRow{
			Key:             ev.Key,
			CanonicalLabel:  ev.CanonicalLabel,
			DisplayTitle:    ev.DisplayTitle,
			LabelQuality:    string(ev.LabelQuality),
			ContextJSON:     string(contextJSON),
			Velocity:        ev.Velocity,
			TrueZScore:      ev.TrueZScore,
			PoissonSurprise: ev.PoissonSurprise,
			BurstScore:      ev.BurstScore,
			SpikeRatio:      ev.SpikeRatio,
			RankScore:       ev.RankScore,
			RankBreakdown:   string(breakdownJSON),
			ConfidenceScore: ev.ConfidenceScore,
			State:           string(ev.State),
			IsTrending:      ev.IsTrending,
			IsBreaking:      ev.IsBreaking,
			IsEvergreen:     ev.IsEvergreen,
			TrendingSince:   ev.TrendingSince,
			Mentions1h:      int32(ev.Mentions1h),
			Mentions6h:      int32(ev.Mentions6h),
			Mentions24h:     int32(ev.Mentions24h),
			SourceTypeCount: int32(ev.SourceTypeCount),
			FirstSeenAt:     ev.FirstSeenAt,
			LastSeenAt:      ev.LastSeenAt,
			UpdatedAt:       ev.UpdatedAt,
		})
	}
	return rows
}

// ConvertAlerts maps anomaly alerts into Parquet rows.
func ConvertAlerts(alerts []schema.AnomalyAlert) []AnomalyAlertRow {
	rows := make([]AnomalyAlertRow, 0, len(alerts))
	for _, a := range alerts {
		row := AnomalyAlertRow{
			ID:             a.ID,
			AlertType:      string(a.AlertType),
			EntityKey:      a.EntityKey,
			CurrentValue:   a.CurrentValue,
			BaselineValue:  a.BaselineValue,
			ZScore:         a.ZScore,
			Severity:       string(a.Severity),
			IsAcknowledged: a.IsAcknowledged,
			AckAt:          a.AckAt,
			DetectedAt:     a.DetectedAt,
		}
		if a.AckBy != "" {
			ackBy := a.AckBy
			row.AckBy = &ackBy
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteTrendEventsParquet writes trend event rows to a Parquet file.
func WriteTrendEventsParquet(rows []TrendEventRow, outputPath string) error {
	return writeParquet(rows, outputPath)
}

// WriteAlertsParquet writes alert rows to a Parquet file.
func WriteAlertsParquet(rows []AnomalyAlertRow, outputPath string) error {
	return writeParquet(rows, outputPath)
}

// writeParquet writes any row type to a Parquet file using struct schema
// inference from the parquet tags.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
