package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// rankComponentOrder fixes the display order of rank score components.
var rankComponentOrder = []schema.RankComponent{
	schema.RankSpike,
	schema.RankMentions,
	schema.RankVelocity,
	schema.RankDiversity,
}

// metricsRenderModel bundles scoring configuration and job health for
// serialized output.
type metricsRenderModel struct {
	Formula string                           `json:"formula"`
	Weights map[schema.RankComponent]float64 `json:"weights"`
	Jobs    []schema.JobHealth               `json:"jobs"`
}

// formatWeights formats the active rank weights for display in the formula.
func formatWeights(weights map[schema.RankComponent]float64) string {
	var parts []string
	for _, component := range rankComponentOrder {
		if weight, ok := weights[component]; ok && weight > 0 {
			parts = append(parts, fmt.Sprintf("%.2f*%s", weight, string(component)))
		}
	}
	return strings.Join(parts, "+")
}

// PrintMetrics displays the active scoring configuration and the health of
// each batch job.
func PrintMetrics(health []schema.JobHealth, cfg *contract.Config, duration time.Duration) error {
	renderModel := &metricsRenderModel{
		Formula: formatWeights(cfg.RankWeights),
		Weights: cfg.RankWeights,
		Jobs:    health,
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, renderModel)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for metrics")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, renderModel, cfg, duration)
		}, "Wrote text")
	}
}

// writeMetricsText displays metrics in human-readable text format.
func writeMetricsText(w io.Writer, renderModel *metricsRenderModel, cfg *contract.Config, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "📈 Trendwatch Scoring\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "=====================\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Rank score = weighted sum of burst factors, scaled by recency decay\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "   Formula: Score = (%s) * decay\n\n", renderModel.Formula); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Job", "Last Run", "Duration", "Items", "Streak", "Breaker", "Last Error"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, j := range renderModel.Jobs {
		breaker := "closed"
		if j.BreakerOpen {
			breaker = fmt.Sprintf("open since %s", j.BreakerOpenedAt.Format(contract.DateTimeFormat))
		}
		lastRun := "never"
		if !j.LastRunAt.IsZero() {
			lastRun = j.LastRunAt.Format(contract.DateTimeFormat)
		}
		data = append(data, []string{
			j.JobName,
			lastRun,
			j.LastDuration.String(),
			strconv.Itoa(j.ItemsProcessed),
			strconv.Itoa(j.FailureStreak),
			breaker,
			schema.TruncateLabel(j.LastError, getMaxTableLabelWidth(cfg)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Query completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeMetricsCSV writes the job health records in CSV format.
func writeMetricsCSV(w io.Writer, renderModel *metricsRenderModel) error {
	header := []string{
		"job_name", "last_run_at", "last_duration", "items_processed",
		"failure_streak", "breaker_open", "breaker_opened_at", "last_error",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, j := range renderModel.Jobs {
			openedAt := ""
			if !j.BreakerOpenedAt.IsZero() {
				openedAt = j.BreakerOpenedAt.Format(contract.DateTimeFormat)
			}
			row := []string{
				j.JobName,
				j.LastRunAt.Format(contract.DateTimeFormat),
				j.LastDuration.String(),
				strconv.Itoa(j.ItemsProcessed),
				strconv.Itoa(j.FailureStreak),
				strconv.FormatBool(j.BreakerOpen),
				openedAt,
				j.LastError,
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
