package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	respond "github.com/memovault/memovault/internal/api/respond"
	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/service"
)

// MemoHandler serves the memo CRUD and search endpoints.
type MemoHandler struct {
	svc *service.MemoService
}

func NewMemoHandler(svc *service.MemoService) *MemoHandler {
	return &MemoHandler{svc: svc}
}

// CreateMemo POST /v0/memos
func (h *MemoHandler) CreateMemo(w http.ResponseWriter, r *http.Request) {
	var req model.CreateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.CreateMemo(r.Context(), req)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetMemo GET /v0/memos/{memoId}
func (h *MemoHandler) GetMemo(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	out, err := h.svc.GetMemo(r.Context(), v["memoId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// ListMemos GET /v0/memos
func (h *MemoHandler) ListMemos(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	out, err := h.svc.ListMemos(r.Context(), f)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"memos": out, "count": len(out)})
}

// UpdateMemo PATCH /v0/memos/{memoId}
func (h *MemoHandler) UpdateMemo(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	var req model.UpdateMemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.UpdateMemo(r.Context(), v["memoId"], req)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteMemo DELETE /v0/memos/{memoId}
func (h *MemoHandler) DeleteMemo(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	if err := h.svc.DeleteMemo(r.Context(), v["memoId"]); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "id": v["memoId"]})
}

// SearchMemos POST /v0/search
func (h *MemoHandler) SearchMemos(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		model.MemoFilter
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	out, err := h.svc.SearchMemos(r.Context(), req.Query, req.MemoFilter)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"memos": out,
		"count": len(out),
		"query": req.Query,
	})
}

// MemoStats GET /v0/memos/stats
func (h *MemoHandler) MemoStats(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Stats(r.Context())
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// filterFromQuery decodes the list filter from URL query parameters.
func filterFromQuery(r *http.Request) (model.MemoFilter, error) {
	var f model.MemoFilter
	q := r.URL.Query()

	if raw := q.Get("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	if raw := q.Get("min_importance"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, model.NewValidationError("min_importance", "must be an integer")
		}
		f.MinImportance = &n
	}
	if raw := q.Get("emotion"); raw != "" {
		f.Emotion = &raw
	}
	if raw := q.Get("created_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, model.NewValidationError("created_after", "must be an RFC3339 timestamp")
		}
		f.CreatedAfter = &t
	}
	if raw := q.Get("created_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, model.NewValidationError("created_before", "must be an RFC3339 timestamp")
		}
		f.CreatedBefore = &t
	}
	f.OrderBy = q.Get("order_by")
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, model.NewValidationError("limit", "must be an integer")
		}
		f.Limit = n
	}
	return f, nil
}
