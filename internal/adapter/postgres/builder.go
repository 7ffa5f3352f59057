package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
)

// Builder returns a squirrel statement builder using PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Exec renders a squirrel statement and runs it on q.
func Exec(ctx context.Context, q Querier, s squirrel.Sqlizer) (int64, error) {
	sql, args, err := s.ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
