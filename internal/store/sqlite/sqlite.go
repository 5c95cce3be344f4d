// Package sqlite is the embedded-database alternative to the JSON file
// container. The collection lives in a single memos table; tag and relation
// sets are stored as JSON columns. SQLite transactions provide the same
// atomicity the jsonfile driver gets from temp-file replacement.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/memovault/memovault/internal/model"
	"github.com/memovault/memovault/internal/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database file and ensures the schema exists.
func Open(path string) (store.Store, error) {
	db, err := open(path)
	if err != nil {
		return nil, model.NewStorageError("load", err)
	}
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, model.NewStorageError("load", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Create(ctx context.Context, m *model.Memo) (*model.Memo, error) {
	tags, related, err := marshalSets(m)
	if err != nil {
		return nil, model.NewStorageError("create", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO memos (id, content, tags, created_at, updated_at, importance, emotion, related_to, context)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, m.ID, m.Content, tags, formatTime(m.CreatedAt), formatTime(m.UpdatedAt), m.Importance, m.Emotion, related, m.Context)
	if err != nil {
		return nil, model.NewStorageError("create", err)
	}
	return m.Clone(), nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*model.Memo, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, content, tags, created_at, updated_at, importance, emotion, related_to, context
        FROM memos WHERE id = ?
    `, id)
	m, err := scanMemo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NewNotFoundError(id)
	}
	if err != nil {
		return nil, model.NewStorageError("get", err)
	}
	return m, nil
}

func (s *sqliteStore) List(ctx context.Context) ([]*model.Memo, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, content, tags, created_at, updated_at, importance, emotion, related_to, context
        FROM memos ORDER BY rowid
    `)
	if err != nil {
		return nil, model.NewStorageError("list", err)
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Memo{}
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, model.NewStorageError("list", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, model.NewStorageError("list", err)
	}
	return out, nil
}

func (s *sqliteStore) Update(ctx context.Context, m *model.Memo) (*model.Memo, error) {
	tags, related, err := marshalSets(m)
	if err != nil {
		return nil, model.NewStorageError("update", err)
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE memos
        SET content = ?, tags = ?, updated_at = ?, importance = ?, emotion = ?, related_to = ?, context = ?
        WHERE id = ?
    `, m.Content, tags, formatTime(m.UpdatedAt), m.Importance, m.Emotion, related, m.Context, m.ID)
	if err != nil {
		return nil, model.NewStorageError("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, model.NewStorageError("update", err)
	}
	if n == 0 {
		return nil, model.NewNotFoundError(m.ID)
	}
	return m.Clone(), nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memos WHERE id = ?`, id)
	if err != nil {
		return model.NewStorageError("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.NewStorageError("delete", err)
	}
	if n == 0 {
		return model.NewNotFoundError(id)
	}
	return nil
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMemo(row scanner) (*model.Memo, error) {
	var (
		m                model.Memo
		tags, related    string
		created, updated string
		emotion, memoCtx sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Content, &tags, &created, &updated, &m.Importance, &emotion, &related, &memoCtx); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(related), &m.RelatedTo); err != nil {
		return nil, err
	}
	if emotion.Valid {
		m.Emotion = &emotion.String
	}
	if memoCtx.Valid {
		m.Context = &memoCtx.String
	}
	return &m, nil
}

func marshalSets(m *model.Memo) (tags, related string, err error) {
	tb, err := json.Marshal(emptyIfNil(m.Tags))
	if err != nil {
		return "", "", err
	}
	rb, err := json.Marshal(emptyIfNil(m.RelatedTo))
	if err != nil {
		return "", "", err
	}
	return string(tb), string(rb), nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
