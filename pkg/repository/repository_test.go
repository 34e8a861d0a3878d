package repository_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/aligner/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"foreign key passes through", fk, fk},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.err, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestConstraintViolations(t *testing.T) {
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})
	check := &pgconn.PgError{Code: "23514"}

	if !repository.IsForeignKeyViolation(fk) {
		t.Error("IsForeignKeyViolation(23503) = false, want true")
	}
	if repository.IsForeignKeyViolation(check) {
		t.Error("IsForeignKeyViolation(23514) = true, want false")
	}
	if !repository.IsCheckViolation(check) {
		t.Error("IsCheckViolation(23514) = false, want true")
	}
	if repository.IsCheckViolation(errors.New("plain")) {
		t.Error("IsCheckViolation(plain) = true, want false")
	}
}

func TestAssignments(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *repository.Assignments
		wantSQL  string
		wantArgs int
	}{
		{
			"numbers after leading args",
			func() *repository.Assignments {
				return repository.NewAssignments(int64(7)).
					Set("maturity_level", 2).
					Set("notes", nil)
			},
			"UPDATE mappings SET maturity_level = $2, notes = $3 WHERE id = $1",
			3,
		},
		{
			"raw expression takes no argument",
			func() *repository.Assignments {
				return repository.NewAssignments(int64(7)).
					Set("alignment_status", "not_aligned").
					Expr("updated_at", "NOW()")
			},
			"UPDATE mappings SET alignment_status = $2, updated_at = NOW() WHERE id = $1",
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, args := tt.build().Update("mappings", "id = $1")
			if stmt != tt.wantSQL {
				t.Errorf("sql = %q, want %q", stmt, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Errorf("args = %v, want %d", args, tt.wantArgs)
			}
			if args[0] != int64(7) {
				t.Errorf("args[0] = %v, want 7", args[0])
			}
		})
	}
}

func TestAssignmentsLen(t *testing.T) {
	set := repository.NewAssignments(int64(1))
	if set.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", set.Len())
	}
	set.Set("source", "gazette").Expr("updated_at", "NOW()")
	if set.Len() != 2 {
		t.Errorf("Len() = %d, want 2", set.Len())
	}
}
