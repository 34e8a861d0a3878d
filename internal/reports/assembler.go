package reports

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/internal/scoring"
)

// System defines report generation.
type System interface {
	Handler() *Handler

	Comprehensive(ctx context.Context, scope analysis.Scope) (*Comprehensive, error)
	GapAnalysis(ctx context.Context, scope analysis.Scope) (*GapReport, error)
	Recommendations(ctx context.Context, scope analysis.Scope) (*RecommendationReport, error)
}

type assembler struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

// New creates a report System backed by the database and the analysis system.
func New(db *sql.DB, stats analysis.System, logger *slog.Logger) System {
	return NewAssembler(NewSource(db, stats), logger)
}

// NewAssembler creates a report System over an arbitrary Source.
func NewAssembler(source Source, logger *slog.Logger) System {
	return &assembler{
		source: source,
		logger: logger.With("system", "reports"),
		now:    time.Now,
	}
}

func (a *assembler) Handler() *Handler {
	return NewHandler(a, a.logger)
}

// Comprehensive reads its three inputs concurrently and fails on the first error.
// The overall score is computed from the raw mapping list and is not
// reconciled with the per-domain percentages.
func (a *assembler) Comprehensive(ctx context.Context, scope analysis.Scope) (*Comprehensive, error) {
	if scope.All() {
		return nil, ErrMissingDocuments
	}

	var (
		docs     []Document
		scores   []scoring.DomainScore
		mappings []MappingDetail
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = a.source.Documents(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = a.source.DomainScores(gctx, scope)
		return err
	})
	g.Go(func() error {
		var err error
		mappings, err = a.source.Mappings(gctx, scope)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	statuses := make([]scoring.Status, len(mappings))
	for i, m := range mappings {
		statuses[i] = m.AlignmentStatus
	}
	counts := scoring.Tally(statuses)
	overall := scoring.Overall(statuses)
	concerns := scoring.Concerns(scores)

	a.logger.Info(
		"comprehensive report generated",
		"documents", len(docs),
		"mappings", counts.Total,
		"concerns", len(concerns),
	)

	return &Comprehensive{
		Metadata: Metadata{
			GeneratedAt:           a.now().UTC(),
			DocumentsAnalyzed:     len(docs),
			TotalMappings:         counts.Total,
			OverallAlignmentScore: overall,
		},
		Documents:        docs,
		DomainCoverage:   analysis.Coverage(scores),
		DetailedMappings: mappings,
		AreasOfConcern:   concerns,
		Summary: Summary{
			Counts:                counts,
			OverallAlignmentScore: overall,
			DomainsWithConcerns:   len(concerns),
		},
	}, nil
}

func (a *assembler) GapAnalysis(ctx context.Context, scope analysis.Scope) (*GapReport, error) {
	if scope.All() {
		return nil, ErrMissingDocuments
	}

	scores, err := a.source.DomainScores(ctx, scope)
	if err != nil {
		return nil, err
	}

	rows := scoring.GapAnalysis(scores)
	return &GapReport{
		GapAnalysis: rows,
		Summary:     summarizeGaps(rows),
	}, nil
}

func (a *assembler) Recommendations(ctx context.Context, scope analysis.Scope) (*RecommendationReport, error) {
	if scope.All() {
		return nil, ErrMissingDocuments
	}

	scores, err := a.source.DomainScores(ctx, scope)
	if err != nil {
		return nil, err
	}

	recs := scoring.Recommendations(scores)
	return &RecommendationReport{
		Recommendations: recs,
		Summary:         summarizeRecommendations(recs),
	}, nil
}
