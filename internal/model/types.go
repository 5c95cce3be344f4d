package model

import "time"

// Importance bounds for a memo. The default sits in the middle of the range.
const (
	MinImportance     = 1
	MaxImportance     = 5
	DefaultImportance = 3
)

// Memo is a single stored note with its metadata.
type Memo struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Importance int       `json:"importance"`
	Emotion    *string   `json:"emotion,omitempty"`
	RelatedTo  []string  `json:"related_to"`
	Context    *string   `json:"context,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate stored state through
// returned values.
func (m *Memo) Clone() *Memo {
	if m == nil {
		return nil
	}
	out := *m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.RelatedTo != nil {
		out.RelatedTo = append([]string(nil), m.RelatedTo...)
	}
	if m.Emotion != nil {
		e := *m.Emotion
		out.Emotion = &e
	}
	if m.Context != nil {
		c := *m.Context
		out.Context = &c
	}
	return &out
}

// CreateMemoRequest carries the caller-supplied fields for a new memo.
// Content is the only required field.
type CreateMemoRequest struct {
	Content    string   `json:"content"`
	Tags       []string `json:"tags,omitempty"`
	Importance *int     `json:"importance,omitempty"`
	Emotion    *string  `json:"emotion,omitempty"`
	Context    *string  `json:"context,omitempty"`
	RelatedTo  []string `json:"related_to,omitempty"`
}

// UpdateMemoRequest is a partial update. Nil means "leave unchanged";
// a non-nil Tags or RelatedTo replaces the whole set.
type UpdateMemoRequest struct {
	Content    *string   `json:"content,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Importance *int      `json:"importance,omitempty"`
	Emotion    *string   `json:"emotion,omitempty"`
	Context    *string   `json:"context,omitempty"`
	RelatedTo  *[]string `json:"related_to,omitempty"`
}

// Result orderings accepted by list and search.
const (
	OrderCreatedAt  = "created_at" // ascending, the default
	OrderImportance = "importance" // descending, created_at ascending tiebreak
)

// MemoFilter narrows list/search results. All supplied predicates are
// combined with AND; Tags uses OR semantics within the set.
type MemoFilter struct {
	Tags          []string   `json:"tags,omitempty"`
	MinImportance *int       `json:"min_importance,omitempty"`
	Emotion       *string    `json:"emotion,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
	OrderBy       string     `json:"order_by,omitempty"`
	Limit         int        `json:"limit,omitempty"`
}

// MemoStats summarises the collection.
type MemoStats struct {
	TotalCount             int         `json:"total_count"`
	TagsCount              int         `json:"tags_count"`
	UniqueTags             []string    `json:"unique_tags"`
	Contexts               []string    `json:"contexts"`
	Emotions               []string    `json:"emotions"`
	ImportanceDistribution map[int]int `json:"importance_distribution"`
}
