// Package repository provides database helpers shared by the domain repositories:
// transactions, typed row scanning, paged listing and partial updates.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/query"
)

// Querier is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts one scanned row into T.
type ScanFunc[T any] func(Scanner) (T, error)

// WithTx runs fn inside a transaction, committing when fn succeeds and
// rolling back otherwise.
func WithTx[T any](ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var zero T

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback()

	result, err := fn(tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(); err != nil {
		return zero, err
	}

	return result, nil
}

// QueryOne scans the single row returned by query.
// A missing row surfaces as sql.ErrNoRows from scan.
func QueryOne[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) (T, error) {
	return scan(q.QueryRowContext(ctx, query, args...))
}

// QueryMany scans every row returned by query. The result is never nil.
func QueryMany[T any](ctx context.Context, q Querier, query string, args []any, scan ScanFunc[T]) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	return results, rows.Err()
}

// QueryPage counts the rows matched by qb and returns the requested page of them.
// page must already be normalized. Client sort fields replace the builder's default order.
func QueryPage[T any](
	ctx context.Context,
	q Querier,
	qb *query.Builder,
	page pagination.PageRequest,
	scan ScanFunc[T],
) (*pagination.PageResult[T], error) {
	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := QueryMany(ctx, q, pageSQL, pageArgs, scan)
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// Exists reports whether the subquery returns at least one row.
func Exists(ctx context.Context, q Querier, subquery string, args ...any) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS ("+subquery+")", args...).Scan(&exists)
	return exists, err
}

// ExecExpectOne executes a statement that must affect exactly one row.
// Zero affected rows are reported as sql.ErrNoRows.
func ExecExpectOne(ctx context.Context, e Executor, query string, args ...any) error {
	result, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Assignments collects the SET list of a partial UPDATE.
// Placeholders are numbered after the leading arguments given to NewAssignments,
// which the caller references in its WHERE clause as $1..$n.
type Assignments struct {
	sets []string
	args []any
}

// NewAssignments starts an assignment list after the given WHERE arguments.
func NewAssignments(leading ...any) *Assignments {
	return &Assignments{args: leading}
}

// Set assigns value to column.
func (a *Assignments) Set(column string, value any) *Assignments {
	a.args = append(a.args, value)
	a.sets = append(a.sets, fmt.Sprintf("%s = $%d", column, len(a.args)))
	return a
}

// Expr assigns a raw SQL expression to column, such as NOW().
func (a *Assignments) Expr(column, expr string) *Assignments {
	a.sets = append(a.sets, column+" = "+expr)
	return a
}

// Len is the number of assigned columns.
func (a *Assignments) Len() int {
	return len(a.sets)
}

// Update renders "UPDATE table SET ... WHERE where" and its arguments.
func (a *Assignments) Update(table, where string) (string, []any) {
	return "UPDATE " + table + " SET " + strings.Join(a.sets, ", ") + " WHERE " + where, a.args
}
