package mappings

import (
	"context"

	"github.com/JaimeStill/aligner/internal/analysis"
	"github.com/JaimeStill/aligner/pkg/pagination"
)

// System defines the mapping operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Mapping], error)
	Find(ctx context.Context, id int64) (*Mapping, error)
	Create(ctx context.Context, cmd CreateCommand) (*Mapping, error)
	Update(ctx context.Context, id int64, cmd UpdateCommand) (*Mapping, error)
	Delete(ctx context.Context, id int64) error

	// Statistics aggregates mappings per domain, optionally for one document.
	Statistics(ctx context.Context, documentID *int64) ([]analysis.CoverageRow, error)
}
