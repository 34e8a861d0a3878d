package domains

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/aligner/pkg/repository"
)

// System defines read access to framework domains.
type System interface {
	Handler() *Handler
	List(ctx context.Context) ([]Domain, error)
	Find(ctx context.Context, id int64) (*Domain, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a domain repository implementing System.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "domains"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Domain, error) {
	q := `SELECT id, domain_name, domain_code, description, maturity_levels
		FROM qc2m2_domains
		ORDER BY id`

	domains, err := repository.QueryMany(ctx, r.db, q, nil, scanDomain)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	return domains, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Domain, error) {
	q := `SELECT id, domain_name, domain_code, description, maturity_levels
		FROM qc2m2_domains
		WHERE id = $1`

	d, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanDomain)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query domain %d: %w", id, err)
	}
	return &d, nil
}

func scanDomain(s repository.Scanner) (Domain, error) {
	var (
		d      Domain
		levels string
	)
	if err := s.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &levels); err != nil {
		return d, err
	}
	d.MaturityLevels = parseLevels(levels)
	return d, nil
}
