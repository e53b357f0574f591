package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

func (d *DB) UpsertSourceItem(ctx context.Context, upsert *store.UpsertSourceItem) (*store.SourceItem, error) {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO source_item (id, content, created_ts)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content
	`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.ID, upsert.Content, now); err != nil {
		return nil, errors.Wrap(err, "failed to upsert source item")
	}
	return &store.SourceItem{ID: upsert.ID, Content: upsert.Content, CreatedTs: now}, nil
}

func (d *DB) ListSourceItems(ctx context.Context, find *store.FindSourceItem) ([]*store.SourceItem, error) {
	where, args := []string{"1 = 1"}, []any{}

	if len(find.IDs) > 0 {
		marks := make([]string, 0, len(find.IDs))
		for _, id := range find.IDs {
			marks = append(marks, "?")
			args = append(args, id)
		}
		where = append(where, "id IN ("+strings.Join(marks, ", ")+")")
	}

	query := `
		SELECT id, content, created_ts
		FROM source_item
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT ?"
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list source items")
	}
	defer rows.Close()

	list := []*store.SourceItem{}
	for rows.Next() {
		var item store.SourceItem
		if err := rows.Scan(&item.ID, &item.Content, &item.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan source item")
		}
		list = append(list, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list source items")
	}
	return list, nil
}

// SearchSourceItems is not supported on SQLite: similarity search
// requires the pgvector extension. Callers degrade to empty retrieval.
func (d *DB) SearchSourceItems(_ context.Context, _ *store.SearchSourceItems) ([]*store.SourceItem, error) {
	return nil, errors.New("vector search is not supported by the sqlite driver")
}

func (d *DB) DeleteSourceItem(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM source_item WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "failed to delete source item")
	}
	return nil
}
