package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
)

// upsertQuery builds an insert that overwrites every non-key column when the
// key already exists, or leaves the row alone when all columns are keys.
func upsertQuery(table string, keys, columns []string) string {
	var sets []string
	for _, c := range columns {
		if !slices.Contains(keys, c) {
			sets = append(sets, c+" = EXCLUDED."+c)
		}
	}
	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}
	return insertQuery(table, columns) + fmt.Sprintf(" ON CONFLICT (%s) %s", strings.Join(keys, ", "), action)
}

// insertIgnoreQuery builds an insert that is a no-op when the key exists.
func insertIgnoreQuery(table string, keys, columns []string) string {
	return insertQuery(table, columns) + fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", strings.Join(keys, ", "))
}

func insertQuery(table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
}

// upsert writes one row keyed by keys and returns the affected-row count.
func upsert(ctx context.Context, ext sqlx.ExtContext, table string, keys, columns []string, values ...any) (int64, error) {
	if len(values) != len(columns) {
		return 0, fmt.Errorf("upsert %s: %d values for %d columns", table, len(values), len(columns))
	}
	return exec(ctx, ext, upsertQuery(table, keys, columns), values...)
}

// upsertMany writes every row in one transaction through a single prepared
// statement. A failing row rolls back the whole batch.
func upsertMany(ctx context.Context, s Session, table string, keys, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var total int64
	err := withTx(ctx, s, func(tx *sqlx.Tx) error {
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(upsertQuery(table, keys, columns)))
		if err != nil {
			return classify(err)
		}
		defer stmt.Close()

		for _, row := range rows {
			if len(row) != len(columns) {
				return fmt.Errorf("upsert %s: %d values for %d columns", table, len(row), len(columns))
			}
			res, err := stmt.ExecContext(ctx, row...)
			if err != nil {
				return classify(err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func exec(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	res, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, classify(err)
	}
	return res.RowsAffected()
}

// lookupOne scans the first row into dest. A missing row is ok == false.
func lookupOne(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) (bool, error) {
	err := sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, classify(err)
	}
	return true, nil
}

func lookupAll(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	if err := sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...); err != nil {
		return classify(err)
	}
	return nil
}

func count(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (int, error) {
	var n int
	if _, err := lookupOne(ctx, q, &n, query, args...); err != nil {
		return 0, err
	}
	return n, nil
}
