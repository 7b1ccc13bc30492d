//go:build basic || database

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	// sharedBinaryPath holds the path to a shared trendwatch binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getTrendwatchBinary returns the path to the trendwatch binary, building it once if needed.
func getTrendwatchBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "trendwatch-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binaryPath := filepath.Join(tempDir, "trendwatch")
		buildCmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/trendwatch")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build trendwatch: %v", err))
		}

		sharedBinaryPath = binaryPath
	})

	return sharedBinaryPath
}

// writeSampleMentions writes a small batch of mention events anchored to asOf
// and returns the file path.
func writeSampleMentions(t *testing.T, asOf time.Time) string {
	t.Helper()

	type mention struct {
		SourceType string  `json:"source_type"`
		RawTopic   string  `json:"raw_topic"`
		OccurredAt string  `json:"occurred_at"`
		Sentiment  float64 `json:"sentiment"`
		SourceTier int     `json:"source_tier"`
		SourceID   string  `json:"source_id"`
	}

	events := []mention{
		{SourceType: "news", RawTopic: "Wildfire Evacuation Orders", OccurredAt: asOf.Add(-10 * time.Minute).Format(time.RFC3339), Sentiment: -0.6, SourceTier: 1, SourceID: "doc-1"},
		{SourceType: "news", RawTopic: "wildfire evacuation orders", OccurredAt: asOf.Add(-20 * time.Minute).Format(time.RFC3339), Sentiment: -0.4, SourceTier: 2, SourceID: "doc-2"},
		{SourceType: "social", RawTopic: "Wildfire Evacuation Orders", OccurredAt: asOf.Add(-30 * time.Minute).Format(time.RFC3339), Sentiment: -0.8, SourceTier: 3, SourceID: "doc-3"},
		{SourceType: "entity", RawTopic: "Senate Hearing", OccurredAt: asOf.Add(-2 * time.Hour).Format(time.RFC3339), Sentiment: 0.1, SourceTier: 2, SourceID: "doc-4"},
	}

	data, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("failed to marshal sample mentions: %v", err)
	}

	path := filepath.Join(t.TempDir(), "mentions.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write sample mentions: %v", err)
	}
	return path
}
