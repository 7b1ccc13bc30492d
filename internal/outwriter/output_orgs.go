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

// PrintOrgScoreResults outputs a tenant's relevance feed, dispatching based
// on the output format configured.
func PrintOrgScoreResults(scores []schema.OrgTrendScore, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, scores)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOrgScoreCSV(w, scores, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for org scores; use the store export command")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOrgScoreTable(w, scores, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

func writeOrgScoreTable(w io.Writer, scores []schema.OrgTrendScore, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Trend", "Relevance", "Urgency", "Priority"}
	if cfg.Explain {
		headers = append(headers, "Matched", "Reasons")
	}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, s := range scores {
		row := []string{
			strconv.Itoa(i + 1),
			schema.TruncateLabel(s.TrendKey, getMaxTableLabelWidth(cfg)),
			fmtFloat(s.RelevanceScore),
			fmtFloat(s.UrgencyScore),
			strings.ToUpper(string(s.Priority)),
		}
		if cfg.Explain {
			matched := append([]string{}, s.Explanation.MatchedTerms...)
			matched = append(matched, s.Explanation.MatchedEntities...)
			matched = append(matched, s.Explanation.MatchedGeographies...)
			row = append(row,
				schema.FormatTerms(matched),
				strings.Join(s.Explanation.ReasonCodes, ","),
			)
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d scored trends for org %s\n", len(scores), cfg.Org); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Query completed in %v. Store backend: %s\n", duration, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

func writeOrgScoreCSV(w io.Writer, scores []schema.OrgTrendScore, fmtFloat func(float64) string) error {
	header := []string{
		"rank", "org_id", "trend_key", "relevance", "urgency", "priority",
		"blocked", "matched_terms", "matched_entities", "matched_geographies",
		"reason_codes", "computed_at", "expires_at",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, s := range scores {
			row := []string{
				strconv.Itoa(i + 1),
				s.OrgID,
				s.TrendKey,
				fmtFloat(s.RelevanceScore),
				fmtFloat(s.UrgencyScore),
				string(s.Priority),
				strconv.FormatBool(s.IsBlocked),
				strings.Join(s.Explanation.MatchedTerms, ";"),
				strings.Join(s.Explanation.MatchedEntities, ";"),
				strings.Join(s.Explanation.MatchedGeographies, ";"),
				strings.Join(s.Explanation.ReasonCodes, ";"),
				s.ComputedAt.Format(contract.DateTimeFormat),
				s.ExpiresAt.Format(contract.DateTimeFormat),
			}
			if err := csvWriter.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
