package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/meliosu/onyx-core-builders/internal/models"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func sortedColumns(values map[string]any) []string {
	cols := make([]string, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// insertRow inserts values into table and returns the generated id.
func insertRow(ctx context.Context, tx *sqlx.Tx, table string, values map[string]any) (int64, error) {
	cols := sortedColumns(values)
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		args = append(args, values[col])
	}
	query, qargs, err := psql.Insert(table).Columns(cols...).Values(args...).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s insert: %w", table, err)
	}
	var id int64
	if err := tx.GetContext(ctx, &id, query, qargs...); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return id, nil
}

// updateRow updates values of the row with the given id.
func updateRow(ctx context.Context, tx *sqlx.Tx, table string, id int64, values map[string]any) error {
	ub := psql.Update(table)
	for _, col := range sortedColumns(values) {
		ub = ub.Set(col, values[col])
	}
	query, args, err := ub.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build %s update: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// insertWithID inserts a row whose primary key is shared with a parent row.
func insertWithID(ctx context.Context, tx *sqlx.Tx, table string, id int64, values map[string]any) error {
	cols := sortedColumns(values)
	args := make([]interface{}, 0, len(cols)+1)
	args = append(args, id)
	for _, col := range cols {
		args = append(args, values[col])
	}
	query, qargs, err := psql.Insert(table).Columns(append([]string{"id"}, cols...)...).Values(args...).ToSql()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, query, qargs...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// insertSatellite inserts the variant row sharing its id with the base row.
func insertSatellite(ctx context.Context, tx *sqlx.Tx, id int64, s models.Satellite) error {
	return insertWithID(ctx, tx, s.Table(), id, s.Values())
}

func updateSatellite(ctx context.Context, tx *sqlx.Tx, id int64, s models.Satellite) error {
	return updateRow(ctx, tx, s.Table(), id, s.Values())
}

func deleteSatellite(ctx context.Context, tx *sqlx.Tx, table string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// replaceSatellite writes s for the row, switching tables when the variant
// changed from previous.
func replaceSatellite(ctx context.Context, tx *sqlx.Tx, id int64, previous string, s models.Satellite) error {
	if previous == s.Table() {
		return updateSatellite(ctx, tx, id, s)
	}
	if err := deleteSatellite(ctx, tx, previous, id); err != nil {
		return err
	}
	return insertSatellite(ctx, tx, id, s)
}

// loadSatellite scans the variant row into s.
func loadSatellite(ctx context.Context, db sqlx.QueryerContext, id int64, s models.Satellite) error {
	query, args, err := psql.Select(sortedColumns(s.Values())...).From(s.Table()).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build %s select: %w", s.Table(), err)
	}
	if err := sqlx.GetContext(ctx, db, s, query, args...); err != nil {
		return fmt.Errorf("load %s: %w", s.Table(), err)
	}
	return nil
}

func exists(ctx context.Context, db sqlx.QueryerContext, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, db, &ok, "SELECT EXISTS("+query+")", args...); err != nil {
		return false, err
	}
	return ok, nil
}

func count(ctx context.Context, db sqlx.QueryerContext, query string, args ...interface{}) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, db, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
