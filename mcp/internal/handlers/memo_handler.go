package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/service"
)

// MemoHandler exposes create_memo, get_memo, list_memos, update_memo and
// delete_memo tools.
type MemoHandler struct {
	svc *service.MemoService
}

// NewMemoHandler returns a new handler.
func NewMemoHandler(svc *service.MemoService) *MemoHandler {
	return &MemoHandler{svc: svc}
}

var stringItems = map[string]any{"type": "string"}

// RegisterTools registers memo CRUD tools.
func (mh *MemoHandler) RegisterTools(s *server.MCPServer) error {
	createMemo := mcp.NewTool("create_memo",
		mcp.WithDescription("Create a new memo. Content is required; tags, importance (1-5, default 3), emotion, context and related memo ids are optional."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Memo text")),
		mcp.WithArray("tags", mcp.Description("Tags for the memo"), mcp.Items(stringItems)),
		mcp.WithNumber("importance", mcp.Description("Importance 1-5 (higher is more important, default 3)")),
		mcp.WithString("emotion", mcp.Description("Free-text emotion label")),
		mcp.WithString("context", mcp.Description("Free-text note about the originating situation")),
		mcp.WithArray("related_to", mcp.Description("Ids of related memos"), mcp.Items(stringItems)),
	)
	s.AddTool(createMemo, mh.handleCreateMemo)

	getMemo := mcp.NewTool("get_memo",
		mcp.WithDescription("Get a single memo by id"),
		mcp.WithString("memo_id", mcp.Required(), mcp.Description("The id of the memo")),
	)
	s.AddTool(getMemo, mh.handleGetMemo)

	listMemos := mcp.NewTool("list_memos",
		mcp.WithDescription("List memos with optional filters. All filters are combined with AND; tags match if the memo carries at least one of them."),
		mcp.WithArray("tags", mcp.Description("Return memos carrying at least one of these tags"), mcp.Items(stringItems)),
		mcp.WithNumber("min_importance", mcp.Description("Inclusive importance lower bound (1-5)")),
		mcp.WithString("emotion", mcp.Description("Exact emotion match")),
		mcp.WithString("created_after", mcp.Description("Inclusive RFC3339 lower bound on created_at")),
		mcp.WithString("created_before", mcp.Description("Inclusive RFC3339 upper bound on created_at")),
		mcp.WithString("order_by", mcp.Description("created_at (ascending, default) or importance (descending)")),
		mcp.WithNumber("limit", mcp.Description("Max memos to return")),
	)
	s.AddTool(listMemos, mh.handleListMemos)

	updateMemo := mcp.NewTool("update_memo",
		mcp.WithDescription("Update an existing memo. Only supplied fields change; a supplied tag set replaces the previous one."),
		mcp.WithString("memo_id", mcp.Required(), mcp.Description("The id of the memo")),
		mcp.WithString("content", mcp.Description("New memo text")),
		mcp.WithArray("tags", mcp.Description("Replacement tag set"), mcp.Items(stringItems)),
		mcp.WithNumber("importance", mcp.Description("New importance 1-5")),
		mcp.WithString("emotion", mcp.Description("New emotion label")),
		mcp.WithString("context", mcp.Description("New context note")),
		mcp.WithArray("related_to", mcp.Description("Replacement set of related memo ids"), mcp.Items(stringItems)),
	)
	s.AddTool(updateMemo, mh.handleUpdateMemo)

	deleteMemo := mcp.NewTool("delete_memo",
		mcp.WithDescription("Delete a memo permanently. References to it from other memos are left in place."),
		mcp.WithString("memo_id", mcp.Required(), mcp.Description("The id of the memo")),
	)
	s.AddTool(deleteMemo, mh.handleDeleteMemo)

	return nil
}

func (mh *MemoHandler) handleCreateMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content parameter is required"), nil
	}

	in := model.CreateMemoRequest{Content: content}
	args := req.GetArguments()
	if t, ok := args["tags"]; ok {
		if err := decodeArg(t, &in.Tags); err != nil {
			return mcp.NewToolResultError("tags must be an array of strings"), nil
		}
	}
	if imp, ok := args["importance"].(float64); ok {
		// clamp at the tool boundary; the service still validates strictly
		v := clampImportance(int(imp))
		in.Importance = &v
	}
	if e, ok := args["emotion"].(string); ok {
		in.Emotion = &e
	}
	if c, ok := args["context"].(string); ok {
		in.Context = &c
	}
	if r, ok := args["related_to"]; ok {
		if err := decodeArg(r, &in.RelatedTo); err != nil {
			return mcp.NewToolResultError("related_to must be an array of strings"), nil
		}
	}

	start := time.Now()
	memo, err := mh.svc.CreateMemo(ctx, in)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("create_memo failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to create memo: %v", err)), nil
	}
	log.Debug().Str("memo_id", memo.ID).Dur("elapsed", time.Since(start)).Msg("create_memo completed")
	return memoResult(memo)
}

func (mh *MemoHandler) handleGetMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memoID, err := req.RequireString("memo_id")
	if err != nil {
		return mcp.NewToolResultError("memo_id parameter is required"), nil
	}
	memo, err := mh.svc.GetMemo(ctx, memoID)
	if err != nil {
		log.Error().Err(err).Str("memo_id", memoID).Msg("get_memo failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get memo: %v", err)), nil
	}
	return memoResult(memo)
}

func (mh *MemoHandler) handleListMemos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f, errRes := filterFromArgs(req.GetArguments())
	if errRes != nil {
		return errRes, nil
	}
	start := time.Now()
	memos, err := mh.svc.ListMemos(ctx, f)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("list_memos failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list memos: %v", err)), nil
	}
	log.Debug().Int("count", len(memos)).Dur("elapsed", time.Since(start)).Msg("list_memos completed")
	return listResult(memos)
}

func (mh *MemoHandler) handleUpdateMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memoID, err := req.RequireString("memo_id")
	if err != nil {
		return mcp.NewToolResultError("memo_id parameter is required"), nil
	}

	var in model.UpdateMemoRequest
	args := req.GetArguments()
	if c, ok := args["content"].(string); ok {
		in.Content = &c
	}
	if t, ok := args["tags"]; ok {
		var tags []string
		if err := decodeArg(t, &tags); err != nil {
			return mcp.NewToolResultError("tags must be an array of strings"), nil
		}
		in.Tags = &tags
	}
	if imp, ok := args["importance"].(float64); ok {
		v := clampImportance(int(imp))
		in.Importance = &v
	}
	if e, ok := args["emotion"].(string); ok {
		in.Emotion = &e
	}
	if c, ok := args["context"].(string); ok {
		in.Context = &c
	}
	if r, ok := args["related_to"]; ok {
		var related []string
		if err := decodeArg(r, &related); err != nil {
			return mcp.NewToolResultError("related_to must be an array of strings"), nil
		}
		in.RelatedTo = &related
	}

	start := time.Now()
	memo, err := mh.svc.UpdateMemo(ctx, memoID, in)
	if err != nil {
		log.Error().Err(err).Str("memo_id", memoID).Dur("elapsed", time.Since(start)).Msg("update_memo failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to update memo: %v", err)), nil
	}
	log.Debug().Str("memo_id", memoID).Dur("elapsed", time.Since(start)).Msg("update_memo completed")
	return memoResult(memo)
}

func (mh *MemoHandler) handleDeleteMemo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memoID, err := req.RequireString("memo_id")
	if err != nil {
		return mcp.NewToolResultError("memo_id parameter is required"), nil
	}
	if err := mh.svc.DeleteMemo(ctx, memoID); err != nil {
		log.Error().Err(err).Str("memo_id", memoID).Msg("delete_memo failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete memo: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted memo %s", memoID)), nil
}

// --- shared helpers ---

func memoResult(m *model.Memo) (*mcp.CallToolResult, error) {
	b, _ := json.MarshalIndent(m, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

func listResult(memos []*model.Memo) (*mcp.CallToolResult, error) {
	payload := map[string]interface{}{
		"memos": memos,
		"count": len(memos),
	}
	b, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(b)), nil
}

// filterFromArgs decodes the shared list/search filter arguments.
func filterFromArgs(args map[string]any) (model.MemoFilter, *mcp.CallToolResult) {
	var f model.MemoFilter
	if t, ok := args["tags"]; ok {
		if err := decodeArg(t, &f.Tags); err != nil {
			return f, mcp.NewToolResultError("tags must be an array of strings")
		}
	}
	if v, ok := args["min_importance"].(float64); ok {
		n := int(v)
		f.MinImportance = &n
	}
	if e, ok := args["emotion"].(string); ok && e != "" {
		f.Emotion = &e
	}
	if raw, ok := args["created_after"].(string); ok && raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, mcp.NewToolResultError("created_after must be an RFC3339 timestamp")
		}
		f.CreatedAfter = &t
	}
	if raw, ok := args["created_before"].(string); ok && raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, mcp.NewToolResultError("created_before must be an RFC3339 timestamp")
		}
		f.CreatedBefore = &t
	}
	if o, ok := args["order_by"].(string); ok {
		f.OrderBy = o
	}
	if l, ok := args["limit"].(float64); ok {
		f.Limit = int(l)
	}
	return f, nil
}

func clampImportance(v int) int {
	if v < model.MinImportance {
		return model.MinImportance
	}
	if v > model.MaxImportance {
		return model.MaxImportance
	}
	return v
}

// decodeArg round-trips a generic tool argument into a typed value.
func decodeArg(input interface{}, out interface{}) error {
	b, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
