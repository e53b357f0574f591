package postgres

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

func (d *DB) UpsertSourceItem(ctx context.Context, upsert *store.UpsertSourceItem) (*store.SourceItem, error) {
	stmt := `
		INSERT INTO source_item (id, content, embedding, created_ts)
		VALUES ($1, $2, $3, EXTRACT(EPOCH FROM NOW())::BIGINT)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding
		RETURNING id, content, created_ts
	`

	var item store.SourceItem
	err := d.db.QueryRowContext(ctx, stmt,
		upsert.ID,
		upsert.Content,
		pgvector.NewVector(upsert.Embedding),
	).Scan(&item.ID, &item.Content, &item.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert source item")
	}
	return &item, nil
}

func (d *DB) ListSourceItems(ctx context.Context, find *store.FindSourceItem) ([]*store.SourceItem, error) {
	where, args := []string{"1 = 1"}, []any{}

	if len(find.IDs) > 0 {
		where, args = append(where, "id = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(find.IDs))
	}

	query := `
		SELECT id, content, created_ts
		FROM source_item
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
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

// SearchSourceItems runs a cosine-distance nearest-neighbor search.
func (d *DB) SearchSourceItems(ctx context.Context, search *store.SearchSourceItems) ([]*store.SourceItem, error) {
	limit := search.Limit
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT id, content, created_ts
		FROM source_item
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`

	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(search.Embedding), limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search source items")
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
		return nil, errors.Wrap(err, "failed to search source items")
	}
	return list, nil
}

func (d *DB) DeleteSourceItem(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM source_item WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "failed to delete source item")
	}
	return nil
}
