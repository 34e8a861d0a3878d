package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/aligner/internal/scoring"
	"github.com/JaimeStill/aligner/pkg/repository"
)

// System defines the read-only aggregate views over mappings.
type System interface {
	Handler() *Handler

	DomainScores(ctx context.Context, scope Scope) ([]scoring.DomainScore, error)
	DomainCoverage(ctx context.Context, scope Scope) ([]CoverageRow, error)
	GapMatrix(ctx context.Context, scope Scope) ([]MatrixCell, error)
	MaturityDistribution(ctx context.Context, scope Scope) ([]MaturityBucket, error)
	AreasOfConcern(ctx context.Context, scope Scope) ([]scoring.DomainScore, error)
	DocumentCoverage(ctx context.Context, scope Scope) ([]DocumentCoverage, error)
}

// countColumns aggregates the mappings joined as m.
const countColumns = `COUNT(m.id),
	COUNT(m.id) FILTER (WHERE m.alignment_status = 'fully_aligned'),
	COUNT(m.id) FILTER (WHERE m.alignment_status = 'partially_aligned'),
	COUNT(m.id) FILTER (WHERE m.alignment_status = 'not_aligned'),
	AVG(m.maturity_level)::float8`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates an analysis repository implementing System.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "analysis"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

// DomainScores returns all five domains. The scope sits in the join so that
// domains without scoped mappings still appear with zero counts.
func (r *repo) DomainScores(ctx context.Context, scope Scope) ([]scoring.DomainScore, error) {
	q := `SELECT qd.id, qd.domain_name, qd.domain_code, qd.description, ` + countColumns + `
		FROM qc2m2_domains qd
		LEFT JOIN mappings m
			ON m.domain_id = qd.id
			AND ($1::bigint[] IS NULL OR m.document_id = ANY($1))
		GROUP BY qd.id
		ORDER BY qd.id`

	scores, err := repository.QueryMany(ctx, r.db, q, []any{scope.Arg()}, scanDomainScore)
	if err != nil {
		return nil, fmt.Errorf("query domain scores: %w", err)
	}
	return scores, nil
}

func (r *repo) DomainCoverage(ctx context.Context, scope Scope) ([]CoverageRow, error) {
	scores, err := r.DomainScores(ctx, scope)
	if err != nil {
		return nil, err
	}
	return Coverage(scores), nil
}

func (r *repo) AreasOfConcern(ctx context.Context, scope Scope) ([]scoring.DomainScore, error) {
	scores, err := r.DomainScores(ctx, scope)
	if err != nil {
		return nil, err
	}
	return scoring.Concerns(scores), nil
}

// GapMatrix pairs every domain with every scoped document, including pairs without mappings.
func (r *repo) GapMatrix(ctx context.Context, scope Scope) ([]MatrixCell, error) {
	q := `SELECT qd.id, qd.domain_name, qd.domain_code, d.id, d.original_name, d.relevant_agency, ` + countColumns + `
		FROM qc2m2_domains qd
		CROSS JOIN documents d
		LEFT JOIN mappings m ON m.domain_id = qd.id AND m.document_id = d.id
		WHERE $1::bigint[] IS NULL OR d.id = ANY($1)
		GROUP BY qd.id, d.id
		ORDER BY qd.id, d.original_name, d.id`

	cells, err := repository.QueryMany(ctx, r.db, q, []any{scope.Arg()}, scanMatrixCell)
	if err != nil {
		return nil, fmt.Errorf("query gap matrix: %w", err)
	}
	return cells, nil
}

// MaturityDistribution counts mappings per domain and maturity level. Empty buckets are omitted.
func (r *repo) MaturityDistribution(ctx context.Context, scope Scope) ([]MaturityBucket, error) {
	q := `SELECT qd.id, qd.domain_name, qd.domain_code, m.maturity_level, COUNT(*)
		FROM qc2m2_domains qd
		JOIN mappings m ON m.domain_id = qd.id
		WHERE $1::bigint[] IS NULL OR m.document_id = ANY($1)
		GROUP BY qd.id, m.maturity_level
		ORDER BY qd.id, m.maturity_level`

	buckets, err := repository.QueryMany(ctx, r.db, q, []any{scope.Arg()}, func(s repository.Scanner) (MaturityBucket, error) {
		var b MaturityBucket
		err := s.Scan(&b.DomainID, &b.DomainName, &b.DomainCode, &b.MaturityLevel, &b.Count)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("query maturity distribution: %w", err)
	}
	return buckets, nil
}

func (r *repo) DocumentCoverage(ctx context.Context, scope Scope) ([]DocumentCoverage, error) {
	q := `SELECT d.id, d.original_name, d.relevant_agency, ` + countColumns + `,
			COUNT(DISTINCT m.domain_id)
		FROM documents d
		LEFT JOIN mappings m ON m.document_id = d.id
		WHERE $1::bigint[] IS NULL OR d.id = ANY($1)
		GROUP BY d.id
		ORDER BY d.original_name, d.id`

	rows, err := repository.QueryMany(ctx, r.db, q, []any{scope.Arg()}, scanDocumentCoverage)
	if err != nil {
		return nil, fmt.Errorf("query document coverage: %w", err)
	}
	return rows, nil
}

func scanDomainScore(s repository.Scanner) (scoring.DomainScore, error) {
	var (
		d   scoring.Domain
		c   scoring.Counts
		avg *float64
	)
	err := s.Scan(
		&d.ID, &d.Name, &d.Code, &d.Description,
		&c.Total, &c.FullyAligned, &c.PartiallyAligned, &c.NotAligned, &avg,
	)
	if err != nil {
		return scoring.DomainScore{}, err
	}
	return scoring.NewDomainScore(d, c, avg), nil
}

func scanMatrixCell(s repository.Scanner) (MatrixCell, error) {
	var (
		m   MatrixCell
		avg *float64
	)
	err := s.Scan(
		&m.DomainID, &m.DomainName, &m.DomainCode,
		&m.DocumentID, &m.DocumentName, &m.RelevantAgency,
		&m.Total, &m.FullyAligned, &m.PartiallyAligned, &m.NotAligned, &avg,
	)
	if err != nil {
		return m, err
	}
	m.AvgMaturityLevel = roundPtr(avg)
	m.CoverageStatus = scoring.ClassifyCoverage(m.Counts)
	return m, nil
}

func scanDocumentCoverage(s repository.Scanner) (DocumentCoverage, error) {
	var (
		d   DocumentCoverage
		avg *float64
	)
	err := s.Scan(
		&d.DocumentID, &d.DocumentName, &d.RelevantAgency,
		&d.Total, &d.FullyAligned, &d.PartiallyAligned, &d.NotAligned, &avg,
		&d.DomainsCovered,
	)
	if err != nil {
		return d, err
	}
	d.AvgMaturityLevel = roundPtr(avg)
	d.AlignmentPercentage = d.Score()
	d.CoverageStatus = scoring.ClassifyCoverage(d.Counts)
	return d, nil
}
