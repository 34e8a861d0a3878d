package mappings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/query"
	"github.com/JaimeStill/aligner/pkg/repository"
)

type repo struct {
	db         *sql.DB
	stats      analysis.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a mapping repository implementing System.
// Statistics are delegated to the analysis system.
func New(db *sql.DB, stats analysis.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		stats:      stats,
		logger:     logger.With("system", "mappings"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Mapping], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "DocumentName", "DomainName", "Notes")

	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanMapping)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Mapping, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMapping)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &m, nil
}

// Create checks the section reference and the (document, section, domain)
// triple before inserting. The unique index on the triple still guards
// against a concurrent insert between the check and the write.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Mapping, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	id, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		if cmd.SectionID != nil {
			if err := checkSection(ctx, tx, *cmd.SectionID, cmd.DocumentID); err != nil {
				return 0, err
			}
		}

		exists, err := repository.Exists(ctx, tx, `
			SELECT 1 FROM mappings
			WHERE document_id = $1
				AND section_id IS NOT DISTINCT FROM $2
				AND domain_id = $3`,
			cmd.DocumentID, cmd.SectionID, cmd.DomainID,
		)
		if err != nil {
			return 0, fmt.Errorf("check existing mapping: %w", err)
		}
		if exists {
			return 0, ErrDuplicate
		}

		var id int64
		err = tx.QueryRowContext(ctx, `
			INSERT INTO mappings (document_id, section_id, domain_id, maturity_level, alignment_status, notes, mapped_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			cmd.DocumentID,
			cmd.SectionID,
			cmd.DomainID,
			cmd.MaturityLevel,
			string(cmd.AlignmentStatus),
			notesValue(cmd.Notes),
			cmd.MappedBy,
		).Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, mapWriteError(err)
	}

	r.logger.Info(
		"mapping created",
		"id", id,
		"document_id", cmd.DocumentID,
		"domain_id", cmd.DomainID,
		"status", cmd.AlignmentStatus,
	)
	return r.Find(ctx, id)
}

func (r *repo) Update(ctx context.Context, id int64, cmd UpdateCommand) (*Mapping, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	set := repository.NewAssignments(id)
	if cmd.DomainID != nil {
		set.Set("domain_id", *cmd.DomainID)
	}
	if cmd.MaturityLevel != nil {
		set.Set("maturity_level", *cmd.MaturityLevel)
	}
	if cmd.AlignmentStatus != nil {
		set.Set("alignment_status", string(*cmd.AlignmentStatus))
	}
	if cmd.Notes != nil {
		set.Set("notes", notesValue(cmd.Notes))
	}
	set.Expr("updated_at", "NOW()")

	q, args := set.Update("mappings", "id = $1")
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return nil, mapWriteError(err)
	}

	r.logger.Info("mapping updated", "id", id)
	return r.Find(ctx, id)
}

// Delete removes the mapping and unlinks any insights that referenced it.
func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx,
			"UPDATE stakeholder_insights SET related_mapping_id = NULL WHERE related_mapping_id = $1",
			id,
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("unlink insights: %w", err)
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM mappings WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("mapping deleted", "id", id)
	return nil
}

func (r *repo) Statistics(ctx context.Context, documentID *int64) ([]analysis.CoverageRow, error) {
	scope := analysis.Scope{}
	if documentID != nil {
		scope = analysis.NewScope(*documentID)
	}
	return r.stats.DomainCoverage(ctx, scope)
}

func checkSection(ctx context.Context, tx *sql.Tx, sectionID, documentID int64) error {
	var owner int64
	err := tx.QueryRowContext(ctx,
		"SELECT document_id FROM document_sections WHERE id = $1",
		sectionID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: section %d", ErrInvalidReference, sectionID)
	}
	if err != nil {
		return fmt.Errorf("query section %d: %w", sectionID, err)
	}
	if owner != documentID {
		return fmt.Errorf("%w: section %d belongs to document %d", ErrSectionMismatch, sectionID, owner)
	}
	return nil
}

func mapWriteError(err error) error {
	if repository.IsForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
