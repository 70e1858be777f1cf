package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
	"github.com/meliosu/onyx-core-builders/pkg/optional"
)

// listQuery describes one filtered, sorted and paginated list. The page and
// count statements are rendered from the same joins and predicates.
type listQuery struct {
	name    string
	columns []string
	from    string
	joins   []string
	where   []squirrel.Sqlizer
	sorts   map[string]string
	key     string
}

// filter appends a predicate. Nil predicates are ignored so callers can pass
// the result of an optional lookup directly.
func (q *listQuery) filter(pred squirrel.Sqlizer) {
	if pred == nil {
		return
	}
	q.where = append(q.where, pred)
}

func (q listQuery) builder(columns ...string) squirrel.SelectBuilder {
	sb := squirrel.Select(columns...).From(q.from).PlaceholderFormat(squirrel.Dollar)
	for _, join := range q.joins {
		sb = sb.JoinClause(join)
	}
	for _, pred := range q.where {
		sb = sb.Where(pred)
	}
	return sb
}

// orderBy resolves sort_by against the allow-list, falling back to the key.
// Multi-column expressions get the direction applied to every column, and the
// key is appended as a tiebreaker so pages are stable.
func (q listQuery) orderBy(s models.Sort) []string {
	dir := s.SortDirection.SQL()
	expr, ok := q.sorts[s.SortBy]
	if !ok {
		expr = q.key
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(expr, ",") {
		out = append(out, strings.TrimSpace(part)+" "+dir)
	}
	if expr != q.key {
		for _, part := range strings.Split(q.key, ",") {
			out = append(out, strings.TrimSpace(part)+" ASC")
		}
	}
	return out
}

func (q listQuery) pageSQL(params models.ListParams) (string, []interface{}, error) {
	p := params.Pagination.Normalize()
	return q.builder(q.columns...).
		OrderBy(q.orderBy(params.Sort)...).
		Limit(p.Limit()).
		Offset(p.Offset()).
		ToSql()
}

func (q listQuery) countSQL() (string, []interface{}, error) {
	return q.builder("COUNT(*)").ToSql()
}

// runList executes the page query followed by the count query.
func runList[T any](ctx context.Context, db sqlx.QueryerContext, q listQuery, params models.ListParams) ([]T, int, error) {
	query, args, err := q.pageSQL(params)
	if err != nil {
		return nil, 0, fmt.Errorf("build %s query: %w", q.name, err)
	}
	var items []T
	if err := sqlx.SelectContext(ctx, db, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", q.name, err)
	}

	countQuery, countArgs, err := q.countSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build %s count: %w", q.name, err)
	}
	var total int
	if err := sqlx.GetContext(ctx, db, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", q.name, err)
	}
	return items, total, nil
}

// eq returns an equality predicate when v is set.
func eq[T any](column string, v optional.Value[T]) squirrel.Sqlizer {
	val, ok := v.Get()
	if !ok {
		return nil
	}
	return squirrel.Eq{column: val}
}

// contains returns a case-insensitive substring predicate when v is set.
func contains(column string, v optional.Value[string]) squirrel.Sqlizer {
	val, ok := v.Get()
	if !ok {
		return nil
	}
	return squirrel.ILike{column: substring(val)}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// substring turns user text into an ILIKE pattern matching it literally
// anywhere in the column. Backslash is the default LIKE escape in Postgres.
func substring(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// when returns pred if v is set to true, negated if it is set to false.
func when(pred string, v optional.Value[bool], args ...interface{}) squirrel.Sqlizer {
	val, ok := v.Get()
	if !ok {
		return nil
	}
	if val {
		return squirrel.Expr(pred, args...)
	}
	return squirrel.Expr("NOT ("+pred+")", args...)
}
