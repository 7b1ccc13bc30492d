package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/internal/parquet"
	"github.com/newsradar/trendwatch/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintTrendResults outputs the ranked trend feed, dispatching based on the
// output format configured.
func PrintTrendResults(trends []schema.TrendEvent, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, trends)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendCSV(w, trends, cfg, fmtFloat, intFmt)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("--output-file is required for parquet output")
		}
		return parquet.WriteTrendEventsParquet(parquet.ConvertTrendEvents(trends), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrendTable(w, trends, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
}

// writeTrendTable generates and writes the human-readable table.
func writeTrendTable(w io.Writer, trends []schema.TrendEvent, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Trend", "Score", "State"}
	if cfg.Detail {
		headers = append(headers, "1h", "6h", "24h", "Velocity", "Z", "Conf")
	}
	if cfg.Explain {
		headers = append(headers, "Breakdown")
	}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, t := range trends {
		state := contract.GetPlainStateLabel(t.State)
		if cfg.UseColors {
			state = contract.GetColorStateLabel(t.State)
		}
		row := []string{
			strconv.Itoa(i + 1),
			schema.TruncateLabel(t.DisplayTitle, getMaxTableLabelWidth(cfg)),
			fmtFloat(t.RankScore),
			state,
		}
		if cfg.Detail {
			row = append(row,
				fmt.Sprintf(intFmt, t.Mentions1h),
				fmt.Sprintf(intFmt, t.Mentions6h),
				fmt.Sprintf(intFmt, t.Mentions24h),
				fmtFloat(t.Velocity),
				fmtFloat(t.TrueZScore),
				fmtFloat(t.ConfidenceScore),
			)
		}
		if cfg.Explain {
			row = append(row, formatRankBreakdown(t.RankBreakdown, fmtFloat))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	trending, breaking := 0, 0
	for _, t := range trends {
		if t.IsTrending {
			trending++
		}
		if t.IsBreaking {
			breaking++
		}
	}
	if _, err := fmt.Fprintf(w, "Showing top %d trends (%d trending, %d breaking)\n", len(trends), trending, breaking); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// writeTrendCSV writes the trend feed in CSV format.
func writeTrendCSV(w io.Writer, trends []schema.TrendEvent, cfg *contract.Config, fmtFloat func(float64) string, intFmt string) error {
	header := []string{
		"rank", "key", "title", "label_quality", "state", "rank_score",
		"velocity", "z_score", "poisson_surprise", "spike_ratio", "confidence",
		"mentions_1h", "mentions_6h", "mentions_24h", "source_types",
		"trending_since", "last_seen_at",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, t := range trends {
			trendingSince := ""
			if t.TrendingSince != nil {
				trendingSince = t.TrendingSince.Format(contract.DateTimeFormat)
			}
			row := []string{
				strconv.Itoa(i + 1),
				t.Key,
				t.DisplayTitle,
				string(t.LabelQuality),
				string(t.State),
				fmtFloat(t.RankScore),
				fmtFloat(t.Velocity),
				fmtFloat(t.TrueZScore),
				fmtFloat(t.PoissonSurprise),
				fmtFloat(t.SpikeRatio),
				fmtFloat(t.ConfidenceScore),
				fmt.Sprintf(intFmt, t.Mentions1h),
				fmt.Sprintf(intFmt, t.Mentions6h),
				fmt.Sprintf(intFmt, t.Mentions24h),
				fmt.Sprintf(intFmt, t.SourceTypeCount),
				trendingSince,
				t.LastSeenAt.Format(contract.DateTimeFormat),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// formatRankBreakdown renders the per-component contributions in a stable
// order for explain mode.
func formatRankBreakdown(breakdown map[schema.RankComponent]float64, fmtFloat func(float64) string) string {
	if len(breakdown) == 0 {
		return ""
	}
	components := make([]string, 0, len(breakdown))
	for component := range breakdown {
		components = append(components, string(component))
	}
	sort.Strings(components)

	parts := make([]string, 0, len(components))
	for _, component := range components {
		parts = append(parts, fmt.Sprintf("%s=%s", component, fmtFloat(breakdown[schema.RankComponent(component)])))
	}
	return strings.Join(parts, " ")
}
