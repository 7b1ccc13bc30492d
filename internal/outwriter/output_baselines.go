package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// IngestSummary reports the outcome of one ingest pass.
type IngestSummary struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
	Pruned   int `json:"pruned"`
}

// RescoreSummary reports the outcome of one rescore pass.
type RescoreSummary struct {
	KeysScored    int `json:"keys_scored"`
	AlertsEmitted int `json:"alerts_emitted"`
}

// PrintIngestSummary outputs the ingest pass summary.
func PrintIngestSummary(summary IngestSummary, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		duplicates := summary.Received - summary.Inserted
		if _, err := fmt.Fprintf(w, "Ingested %d events (%d duplicates skipped, %d expired pruned)\n",
			summary.Inserted, duplicates, summary.Pruned); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Ingest completed in %v. Store backend: %s\n", duration, cfg.StoreBackend)
		return err
	}, "Wrote summary")
}

// PrintRescoreSummary outputs the rescore pass summary.
func PrintRescoreSummary(summary RescoreSummary, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "Rescored %d keys, emitted %d alerts\n",
			summary.KeysScored, summary.AlertsEmitted); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Rescore completed in %v. Store backend: %s\n", duration, cfg.StoreBackend)
		return err
	}, "Wrote summary")
}

// PrintBaselineResults outputs refreshed baselines, dispatching based on the
// output format configured.
func PrintBaselineResults(baselines []schema.TrendBaseline, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, baselines)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBaselineCSV(w, baselines, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for baselines; use the store export command")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBaselineTable(w, baselines, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
}

func writeBaselineTable(w io.Writer, baselines []schema.TrendBaseline, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Topic", "Bucket", "Mean/h", "StdDev", "RelStdDev", "Hours", "Stable"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	stable := 0
	for _, b := range baselines {
		if b.IsStable {
			stable++
		}
		data = append(data, []string{
			schema.TruncateLabel(b.Key, getMaxTableLabelWidth(cfg)),
			b.Bucket,
			fmtFloat(b.MeanHourly),
			fmtFloat(b.StdDevHourly),
			fmtFloat(b.RelativeStdDev),
			fmt.Sprintf(intFmt, b.SampleHours),
			strconv.FormatBool(b.IsStable),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Refreshed %d baselines (%d stable/evergreen)\n", len(baselines), stable); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Baselines completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

func writeBaselineCSV(w io.Writer, baselines []schema.TrendBaseline, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"topic_key", "bucket", "mean_hourly", "std_dev_hourly", "relative_std_dev",
		"min_hourly", "max_hourly", "sample_hours", "is_stable", "computed_at",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, b := range baselines {
			row := []string{
				b.Key,
				b.Bucket,
				fmtFloat(b.MeanHourly),
				fmtFloat(b.StdDevHourly),
				fmtFloat(b.RelativeStdDev),
				fmtFloat(b.MinHourly),
				fmtFloat(b.MaxHourly),
				fmt.Sprintf(intFmt, b.SampleHours),
				strconv.FormatBool(b.IsStable),
				b.ComputedAt.Format(contract.DateTimeFormat),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
