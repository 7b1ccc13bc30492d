// main is the entry point for the trendwatch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/newsradar/trendwatch/cmd"
	"github.com/newsradar/trendwatch/internal/trendstore"
)

func main() {
	defer trendstore.CloseStores()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
