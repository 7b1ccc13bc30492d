// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/newsradar/trendwatch/internal/contract"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Trendwatch MCP server without
// starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Trendwatch Detection Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_trending_topics ---
	s.AddTool(mcp.NewTool("get_trending_topics",
		mcp.WithDescription("Return the ranked feed of currently trending topics."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithBoolean("breaking_only", mcp.Description("Restrict the feed to breaking trends.")),
	), h.handleGetTrendingTopics)

	// --- 2. Tool: get_org_feed ---
	s.AddTool(mcp.NewTool("get_org_feed",
		mcp.WithDescription("Return the relevance-scored trend feed for one organization."),
		mcp.WithString("org_id", mcp.Description("Organization identifier."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetOrgFeed)

	// --- 3. Tool: get_alerts ---
	s.AddTool(mcp.NewTool("get_alerts",
		mcp.WithDescription("Return recent anomaly alerts, newest first."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
		mcp.WithBoolean("include_acknowledged", mcp.Description("Include acknowledged alerts in the feed.")),
	), h.handleGetAlerts)

	// --- 4. Tool: get_topic_baseline ---
	s.AddTool(mcp.NewTool("get_topic_baseline",
		mcp.WithDescription("Return the hourly baseline and current window stats for a topic."),
		mcp.WithString("topic", mcp.Description("Topic phrase; normalized before lookup."), mcp.Required()),
	), h.handleGetTopicBaseline)

	return s
}

// StartMCPServer starts the Trendwatch MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
