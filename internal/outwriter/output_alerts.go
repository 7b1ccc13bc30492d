package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/internal/parquet"
	"github.com/newsradar/trendwatch/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAlertResults outputs the alert feed, dispatching based on the output
// format configured.
func PrintAlertResults(alerts []schema.AnomalyAlert, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, alerts)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAlertCSV(w, alerts, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		return parquet.WriteAlertsParquet(parquet.ConvertAlerts(alerts), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAlertTable(w, alerts, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

func writeAlertTable(w io.Writer, alerts []schema.AnomalyAlert, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Type", "Topic", "Severity", "Current", "Baseline", "Z", "Detected", "Acked"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, a := range alerts {
		severity := strings.ToUpper(string(a.Severity))
		if cfg.UseColors {
			severity = contract.GetColorSeverityLabel(a.Severity)
		}
		acked := "no"
		if a.IsAcknowledged {
			acked = "by " + a.AckBy
		}
		data = append(data, []string{
			strconv.FormatInt(a.ID, 10),
			string(a.AlertType),
			schema.TruncateLabel(a.EntityKey, getMaxTableLabelWidth(cfg)),
			severity,
			fmtFloat(a.CurrentValue),
			fmtFloat(a.BaselineValue),
			fmtFloat(a.ZScore),
			a.DetectedAt.Format(contract.DateTimeFormat),
			acked,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	unacked := 0
	for _, a := range alerts {
		if !a.IsAcknowledged {
			unacked++
		}
	}
	if _, err := fmt.Fprintf(w, "Showing %d alerts (%d unacknowledged)\n", len(alerts), unacked); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

func writeAlertCSV(w io.Writer, alerts []schema.AnomalyAlert, fmtFloat func(float64) string) error {
	header := []string{
		"id", "alert_type", "entity_key", "severity", "current_value",
		"baseline_value", "z_score", "acknowledged", "ack_by", "ack_at", "detected_at",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, a := range alerts {
			ackAt := ""
			if a.AckAt != nil {
				ackAt = a.AckAt.Format(contract.DateTimeFormat)
			}
			row := []string{
				strconv.FormatInt(a.ID, 10),
				string(a.AlertType),
				a.EntityKey,
				string(a.Severity),
				fmtFloat(a.CurrentValue),
				fmtFloat(a.BaselineValue),
				fmtFloat(a.ZScore),
				strconv.FormatBool(a.IsAcknowledged),
				a.AckBy,
				ackAt,
				a.DetectedAt.Format(contract.DateTimeFormat),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
