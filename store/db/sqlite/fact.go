package sqlite

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

func (d *DB) CreateFact(ctx context.Context, create *store.Fact) (*store.Fact, error) {
	tags, err := json.Marshal(create.Tags)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal tags")
	}

	stmt := `
		INSERT INTO fact (id, user_id, chat_id, fact_type, subject, details, confidence, active, tags, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = d.db.ExecContext(ctx, stmt,
		create.ID,
		create.UserID,
		create.ChatID,
		create.FactType,
		create.Subject,
		create.Details,
		create.Confidence,
		create.Active,
		string(tags),
		create.CreatedTs,
		create.UpdatedTs,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fact")
	}
	return create, nil
}

func buildFactWhere(find *store.FindFact) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}
	if find.ChatID != nil {
		where, args = append(where, "chat_id = ?"), append(args, *find.ChatID)
	}
	if len(find.FactTypes) > 0 {
		marks := make([]string, 0, len(find.FactTypes))
		for _, t := range find.FactTypes {
			marks = append(marks, "?")
			args = append(args, string(t))
		}
		where = append(where, "fact_type IN ("+strings.Join(marks, ", ")+")")
	}
	if len(find.Subjects) > 0 {
		marks := make([]string, 0, len(find.Subjects))
		for _, s := range find.Subjects {
			marks = append(marks, "?")
			args = append(args, s)
		}
		where = append(where, "subject IN ("+strings.Join(marks, ", ")+")")
	}
	if find.Active != nil {
		where, args = append(where, "active = ?"), append(args, *find.Active)
	}
	if find.MinConfidence != nil {
		where, args = append(where, "confidence >= ?"), append(args, *find.MinConfidence)
	}
	if find.CreatedAfter != nil {
		where, args = append(where, "created_ts >= ?"), append(args, *find.CreatedAfter)
	}
	if find.CreatedBefore != nil {
		where, args = append(where, "created_ts <= ?"), append(args, *find.CreatedBefore)
	}
	if find.Query != nil {
		for _, term := range strings.Fields(*find.Query) {
			pattern := "%" + strings.ToLower(term) + "%"
			where = append(where, "(LOWER(details) LIKE ? OR LOWER(COALESCE(subject, '')) LIKE ?)")
			args = append(args, pattern, pattern)
		}
	}

	return where, args
}

func factOrderBy(find *store.FindFact) string {
	column := "created_ts"
	switch find.OrderBy {
	case "updated_at":
		column = "updated_ts"
	case "confidence":
		column = "confidence"
	}
	direction := "ASC"
	if find.OrderDesc {
		direction = "DESC"
	}
	return "ORDER BY " + column + " " + direction
}

// listFacts fetches all rows matching the SQL-expressible filters.
// Tag filtering and pagination happen in Go because tags live in a JSON
// column here; acceptable for the dev-only data volumes SQLite serves.
func (d *DB) listFacts(ctx context.Context, find *store.FindFact) ([]*store.Fact, error) {
	where, args := buildFactWhere(find)

	query := `
		SELECT id, user_id, chat_id, fact_type, subject, details, confidence, active, tags, created_ts, updated_ts
		FROM fact
		WHERE ` + strings.Join(where, " AND ") + `
		` + factOrderBy(find)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list facts")
	}
	defer rows.Close()

	list := []*store.Fact{}
	for rows.Next() {
		var fact store.Fact
		var tags string
		err := rows.Scan(
			&fact.ID,
			&fact.UserID,
			&fact.ChatID,
			&fact.FactType,
			&fact.Subject,
			&fact.Details,
			&fact.Confidence,
			&fact.Active,
			&tags,
			&fact.CreatedTs,
			&fact.UpdatedTs,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan fact")
		}
		if err := json.Unmarshal([]byte(tags), &fact.Tags); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal tags")
		}
		list = append(list, &fact)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list facts")
	}

	if len(find.Tags) > 0 {
		list = filterByTags(list, find.Tags, find.MatchAllTags)
	}
	return list, nil
}

func (d *DB) ListFacts(ctx context.Context, find *store.FindFact) ([]*store.Fact, error) {
	list, err := d.listFacts(ctx, find)
	if err != nil {
		return nil, err
	}

	if find.Offset != nil {
		if *find.Offset >= len(list) {
			return []*store.Fact{}, nil
		}
		list = list[*find.Offset:]
	}
	if find.Limit != nil && *find.Limit < len(list) {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *DB) CountFacts(ctx context.Context, find *store.FindFact) (int, error) {
	list, err := d.listFacts(ctx, find)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func filterByTags(facts []*store.Fact, tags []string, matchAll bool) []*store.Fact {
	filtered := make([]*store.Fact, 0, len(facts))
	for _, fact := range facts {
		has := make(map[string]bool, len(fact.Tags))
		for _, t := range fact.Tags {
			has[t] = true
		}
		matched := 0
		for _, t := range tags {
			if has[t] {
				matched++
			}
		}
		if (matchAll && matched == len(tags)) || (!matchAll && matched > 0) {
			filtered = append(filtered, fact)
		}
	}
	return filtered
}

func (d *DB) UpdateFact(ctx context.Context, update *store.UpdateFact) (*store.Fact, error) {
	set, args := []string{}, []any{}

	if update.Subject != nil {
		set, args = append(set, "subject = ?"), append(args, *update.Subject)
	}
	if update.Details != nil {
		set, args = append(set, "details = ?"), append(args, *update.Details)
	}
	if update.Confidence != nil {
		set, args = append(set, "confidence = ?"), append(args, *update.Confidence)
	}
	if update.Active != nil {
		set, args = append(set, "active = ?"), append(args, *update.Active)
	}
	if update.Tags != nil {
		tags, err := json.Marshal(*update.Tags)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal tags")
		}
		set, args = append(set, "tags = ?"), append(args, string(tags))
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE fact SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update fact")
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}

	facts, err := d.ListFacts(ctx, &store.FindFact{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if len(facts) == 0 {
		return nil, store.ErrNotFound
	}
	return facts[0], nil
}

func (d *DB) DeleteFact(ctx context.Context, delete *store.DeleteFact) error {
	where, args := []string{}, []any{}

	if delete.ID != nil {
		where, args = append(where, "id = ?"), append(args, *delete.ID)
	}
	if delete.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *delete.UserID)
	}
	if len(where) == 0 {
		return errors.New("refusing to delete all facts without a filter")
	}

	stmt := `DELETE FROM fact WHERE ` + strings.Join(where, " AND ")
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return errors.Wrap(err, "failed to delete fact")
	}
	if delete.ID != nil {
		affected, err := result.RowsAffected()
		if err == nil && affected == 0 {
			return store.ErrNotFound
		}
	}
	return nil
}
