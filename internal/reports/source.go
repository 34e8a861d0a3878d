package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/scoring"
	"github.com/JaimeStill/aligner/pkg/repository"
)

// Source provides the raw inputs of a report.
type Source interface {
	Documents(ctx context.Context, scope analysis.Scope) ([]Document, error)
	DomainScores(ctx context.Context, scope analysis.Scope) ([]scoring.DomainScore, error)
	Mappings(ctx context.Context, scope analysis.Scope) ([]MappingDetail, error)
}

type store struct {
	db    *sql.DB
	stats analysis.System
}

// NewSource reads documents and mappings from db and domain scores from stats.
func NewSource(db *sql.DB, stats analysis.System) Source {
	return &store{db: db, stats: stats}
}

func (s *store) Documents(ctx context.Context, scope analysis.Scope) ([]Document, error) {
	q := `SELECT id, original_name, relevant_agency, publication_date, created_at
		FROM documents
		WHERE id = ANY($1)
		ORDER BY original_name, id`

	docs, err := repository.QueryMany(ctx, s.db, q, []any{scope.IDs()}, func(sc repository.Scanner) (Document, error) {
		var d Document
		err := sc.Scan(&d.ID, &d.OriginalName, &d.RelevantAgency, &d.PublicationDate, &d.CreatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("query report documents: %w", err)
	}
	return docs, nil
}

func (s *store) DomainScores(ctx context.Context, scope analysis.Scope) ([]scoring.DomainScore, error) {
	return s.stats.DomainScores(ctx, scope)
}

func (s *store) Mappings(ctx context.Context, scope analysis.Scope) ([]MappingDetail, error) {
	q := `SELECT m.id, d.original_name, qd.domain_name, qd.domain_code,
			m.maturity_level, m.alignment_status, m.notes, ds.section_text,
			u.username, m.created_at
		FROM mappings m
		JOIN documents d ON m.document_id = d.id
		JOIN qc2m2_domains qd ON m.domain_id = qd.id
		LEFT JOIN document_sections ds ON m.section_id = ds.id
		LEFT JOIN users u ON m.mapped_by = u.id
		WHERE m.document_id = ANY($1)
		ORDER BY d.original_name, qd.domain_name, m.created_at, m.id`

	items, err := repository.QueryMany(ctx, s.db, q, []any{scope.IDs()}, func(sc repository.Scanner) (MappingDetail, error) {
		var m MappingDetail
		err := sc.Scan(
			&m.ID,
			&m.DocumentName,
			&m.DomainName,
			&m.DomainCode,
			&m.MaturityLevel,
			&m.AlignmentStatus,
			&m.Notes,
			&m.SectionText,
			&m.MappedByName,
			&m.CreatedAt,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("query report mappings: %w", err)
	}
	return items, nil
}
