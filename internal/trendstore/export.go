package trendstore

import (
	"errors"
	"fmt"

	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/internal/parquet"
)

// ExecuteStoreExport exports the trend and alert tables to Parquet files.
func ExecuteStoreExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.TrendStore()

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TableSizes[trendEventsTable] == 0 && status.TableSizes[alertsTable] == 0 {
		return errors.New("no trend or alert data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total trend events: %d\n", status.TableSizes[trendEventsTable])
	fmt.Printf("Total alerts: %d\n", status.TableSizes[alertsTable])

	trends, err := store.ListTrendEvents(contract.MaxResultLimit, false)
	if err != nil {
		return fmt.Errorf("failed to retrieve trend events: %w", err)
	}
	alerts, err := store.ListAlerts(contract.MaxResultLimit, true)
	if err != nil {
		return fmt.Errorf("failed to retrieve alerts: %w", err)
	}

	trendsFile := outputFile + ".trend_events.parquet"
	if err := parquet.WriteTrendEventsParquet(parquet.ConvertTrendEvents(trends), trendsFile); err != nil {
		return fmt.Errorf("failed to write trend events: %w", err)
	}
	fmt.Printf("Exported %d trend events to: %s\n", len(trends), trendsFile)

	alertsFile := outputFile + ".alerts.parquet"
	if err := parquet.WriteAlertsParquet(parquet.ConvertAlerts(alerts), alertsFile); err != nil {
		return fmt.Errorf("failed to write alerts: %w", err)
	}
	fmt.Printf("Exported %d alerts to: %s\n", len(alerts), alertsFile)

	return nil
}
