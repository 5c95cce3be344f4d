package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/memovault/memovault/internal/service"
)

// SearchHandler exposes the search_memos and memo_stats tools.
type SearchHandler struct {
	svc *service.MemoService
}

// NewSearchHandler returns a new handler.
func NewSearchHandler(svc *service.MemoService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// RegisterTools registers search tools.
func (sh *SearchHandler) RegisterTools(s *server.MCPServer) error {
	searchMemos := mcp.NewTool("search_memos",
		mcp.WithDescription("Keyword search over memos. The query matches case-insensitively as a substring against content, tags, context and emotion; an empty query matches everything. Accepts the same filters as list_memos."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query text")),
		mcp.WithArray("tags", mcp.Description("Return memos carrying at least one of these tags"), mcp.Items(stringItems)),
		mcp.WithNumber("min_importance", mcp.Description("Inclusive importance lower bound (1-5)")),
		mcp.WithString("emotion", mcp.Description("Exact emotion match")),
		mcp.WithString("created_after", mcp.Description("Inclusive RFC3339 lower bound on created_at")),
		mcp.WithString("created_before", mcp.Description("Inclusive RFC3339 upper bound on created_at")),
		mcp.WithString("order_by", mcp.Description("created_at (ascending, default) or importance (descending)")),
		mcp.WithNumber("limit", mcp.Description("Max memos to return")),
	)
	s.AddTool(searchMemos, sh.handleSearch)

	memoStats := mcp.NewTool("memo_stats",
		mcp.WithDescription("Summarise the memo collection: total count, unique tags, contexts, emotions and importance distribution"),
	)
	s.AddTool(memoStats, sh.handleStats)

	return nil
}

func (sh *SearchHandler) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}
	f, errRes := filterFromArgs(req.GetArguments())
	if errRes != nil {
		return errRes, nil
	}

	start := time.Now()
	memos, err := sh.svc.SearchMemos(ctx, query, f)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Str("query", query).Dur("elapsed", elapsed).Msg("search_memos failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to search memos: %v", err)), nil
	}
	log.Debug().Str("query", query).Int("count", len(memos)).Dur("elapsed", elapsed).Msg("search_memos completed")

	payload := map[string]interface{}{
		"memos": memos,
		"count": len(memos),
		"query": query,
	}
	b, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func (sh *SearchHandler) handleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := sh.svc.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("memo_stats failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute stats: %v", err)), nil
	}
	b, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}
