package trendstore

import (
	"fmt"
	"sort"

	"github.com/newsradar/trendwatch/schema"
)

// PrintStoreStatus prints trend store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if !status.OldestItem.IsZero() {
		fmt.Printf("Oldest Mention: %s\n", status.OldestItem.Format("2006-01-02 15:04:05"))
		fmt.Printf("Newest Mention: %s\n", status.NewestItem.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
