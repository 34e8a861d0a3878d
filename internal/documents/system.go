package documents

import (
	"context"

	"github.com/JaimeStill/aligner/pkg/pagination"
)

// System defines the public contract for document operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id int64) (*Detail, error)
	Create(ctx context.Context, cmd CreateCommand) (*Document, error)
	Update(ctx context.Context, id int64, cmd UpdateCommand) (*Document, error)
	Open(ctx context.Context, id int64) (*File, error)
	Delete(ctx context.Context, id int64) error
}
