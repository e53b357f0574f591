package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/tutormind/store"
)

func (d *DB) CreateFact(ctx context.Context, create *store.Fact) (*store.Fact, error) {
	stmt := `
		INSERT INTO fact (id, user_id, chat_id, fact_type, subject, details, confidence, active, tags, created_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_ts, updated_ts
	`
	err := d.db.QueryRowContext(ctx, stmt,
		create.ID,
		create.UserID,
		create.ChatID,
		create.FactType,
		create.Subject,
		create.Details,
		create.Confidence,
		create.Active,
		pq.Array(create.Tags),
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.CreatedTs, &create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fact")
	}
	return create, nil
}

// buildFactWhere translates a FindFact into WHERE clauses and args.
func buildFactWhere(find *store.FindFact) ([]string, []any) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.ChatID != nil {
		where, args = append(where, "chat_id = "+placeholder(len(args)+1)), append(args, *find.ChatID)
	}
	if len(find.FactTypes) > 0 {
		types := make([]string, 0, len(find.FactTypes))
		for _, t := range find.FactTypes {
			types = append(types, string(t))
		}
		where, args = append(where, "fact_type = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(types))
	}
	if len(find.Subjects) > 0 {
		where, args = append(where, "subject = ANY("+placeholder(len(args)+1)+")"), append(args, pq.Array(find.Subjects))
	}
	if find.Active != nil {
		where, args = append(where, "active = "+placeholder(len(args)+1)), append(args, *find.Active)
	}
	if find.MinConfidence != nil {
		where, args = append(where, "confidence >= "+placeholder(len(args)+1)), append(args, *find.MinConfidence)
	}
	if find.CreatedAfter != nil {
		where, args = append(where, "created_ts >= "+placeholder(len(args)+1)), append(args, *find.CreatedAfter)
	}
	if find.CreatedBefore != nil {
		where, args = append(where, "created_ts <= "+placeholder(len(args)+1)), append(args, *find.CreatedBefore)
	}
	if find.Query != nil {
		// Every term must appear, case-insensitively, in details or subject.
		for _, term := range strings.Fields(*find.Query) {
			pattern := "%" + term + "%"
			clause := "(details ILIKE " + placeholder(len(args)+1) +
				" OR COALESCE(subject, '') ILIKE " + placeholder(len(args)+1) + ")"
			where = append(where, clause)
			args = append(args, pattern)
		}
	}
	if len(find.Tags) > 0 {
		op := "&&" // overlap: match any
		if find.MatchAllTags {
			op = "@>" // contains: match all
		}
		where, args = append(where, "tags "+op+" "+placeholder(len(args)+1)), append(args, pq.Array(find.Tags))
	}

	return where, args
}

func factOrderBy(find *store.FindFact) string {
	column := "created_ts"
	switch find.OrderBy {
	case "updated_at":
		column = "updated_ts"
	case "confidence":
		// NULL confidence sorts last either way.
		column = "confidence"
	}
	direction := "ASC"
	if find.OrderDesc {
		direction = "DESC"
	}
	if column == "confidence" {
		return "ORDER BY confidence " + direction + " NULLS LAST, created_ts " + direction
	}
	return "ORDER BY " + column + " " + direction
}

func (d *DB) ListFacts(ctx context.Context, find *store.FindFact) ([]*store.Fact, error) {
	where, args := buildFactWhere(find)

	query := `
		SELECT id, user_id, chat_id, fact_type, subject, details, confidence, active, tags, created_ts, updated_ts
		FROM fact
		WHERE ` + strings.Join(where, " AND ") + `
		` + factOrderBy(find)

	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}
	if find.Offset != nil {
		query += " OFFSET " + placeholder(len(args)+1)
		args = append(args, *find.Offset)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list facts")
	}
	defer rows.Close()

	list := []*store.Fact{}
	for rows.Next() {
		fact, err := scanFact(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list facts")
	}
	return list, nil
}

func (d *DB) CountFacts(ctx context.Context, find *store.FindFact) (int, error) {
	where, args := buildFactWhere(find)

	query := `SELECT COUNT(*) FROM fact WHERE ` + strings.Join(where, " AND ")

	var count int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count facts")
	}
	return count, nil
}

func (d *DB) UpdateFact(ctx context.Context, update *store.UpdateFact) (*store.Fact, error) {
	set, args := []string{}, []any{}

	if update.Subject != nil {
		set, args = append(set, "subject = "+placeholder(len(args)+1)), append(args, *update.Subject)
	}
	if update.Details != nil {
		set, args = append(set, "details = "+placeholder(len(args)+1)), append(args, *update.Details)
	}
	if update.Confidence != nil {
		set, args = append(set, "confidence = "+placeholder(len(args)+1)), append(args, *update.Confidence)
	}
	if update.Active != nil {
		set, args = append(set, "active = "+placeholder(len(args)+1)), append(args, *update.Active)
	}
	if update.Tags != nil {
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, pq.Array(*update.Tags))
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `
		UPDATE fact
		SET ` + strings.Join(set, ", ") + `
		WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, user_id, chat_id, fact_type, subject, details, confidence, active, tags, created_ts, updated_ts
	`

	row := d.db.QueryRowContext(ctx, stmt, args...)
	fact, err := scanFactRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update fact")
	}
	return fact, nil
}

func (d *DB) DeleteFact(ctx context.Context, delete *store.DeleteFact) error {
	where, args := []string{"1 = 1"}, []any{}

	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *delete.UserID)
	}
	if len(args) == 0 {
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFact(s rowScanner) (*store.Fact, error) {
	var fact store.Fact
	var tags pq.StringArray
	err := s.Scan(
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
	fact.Tags = tags
	return &fact, nil
}

func scanFactRow(row *sql.Row) (*store.Fact, error) {
	var fact store.Fact
	var tags pq.StringArray
	err := row.Scan(
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
		return nil, err
	}
	fact.Tags = tags
	return &fact, nil
}
