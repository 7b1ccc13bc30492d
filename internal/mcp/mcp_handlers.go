package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/newsradar/trendwatch/core"
	"github.com/newsradar/trendwatch/internal/contract"
	"github.com/newsradar/trendwatch/schema"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleGetTrendingTopics(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	breakingOnly := request.GetBool("breaking_only", false)

	trends, err := h.mgr.TrendStore().ListTrendEvents(cfg.ResultLimit, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("trend query failed: %v", err)), nil
	}
	if breakingOnly {
		filtered := make([]schema.TrendEvent, 0, len(trends))
		for _, t := range trends {
			if t.IsBreaking {
				filtered = append(filtered, t)
			}
		}
		trends = filtered
	}

	jsonData, _ := json.MarshalIndent(trends, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetOrgFeed(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	orgID := request.GetString("org_id", "")
	if orgID == "" {
		return mcp.NewToolResultError("org_id is required"), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	scores, err := h.mgr.TrendStore().ListOrgScores(orgID, time.Now().UTC(), cfg.ResultLimit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("org feed query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(scores, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetAlerts(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	includeAcked := request.GetBool("include_acknowledged", false)

	alerts, err := h.mgr.TrendStore().ListAlerts(cfg.ResultLimit, includeAcked)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("alert query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(alerts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// topicBaselineResult joins the baseline and live window stats for one topic.
type topicBaselineResult struct {
	Key      string                `json:"key"`
	Baseline *schema.TrendBaseline `json:"baseline,omitempty"`
	Stats    *schema.WindowStats   `json:"stats,omitempty"`
}

func (h *toolHandler) handleGetTopicBaseline(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := request.GetString("topic", "")
	key := core.Normalize(topic)
	if key == "" {
		return mcp.NewToolResultError("topic is required and must normalize to a non-empty key"), nil
	}

	store := h.mgr.TrendStore()
	baseline, err := store.GetBaseline(key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("baseline query failed: %v", err)), nil
	}
	stats, err := store.GetWindowStats(key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("window stats query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(topicBaselineResult{
		Key:      key,
		Baseline: baseline,
		Stats:    stats,
	}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
