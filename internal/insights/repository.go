package insights

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/query"
	"github.com/JaimeStill/aligner/pkg/repository"
)

// System defines stakeholder insight operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Insight], error)
	Find(ctx context.Context, id int64) (*Insight, error)
	Create(ctx context.Context, cmd CreateCommand) (*Insight, error)
	Delete(ctx context.Context, id int64) error
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an insight repository implementing System.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "insights"),
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
) (*pagination.PageResult[Insight], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Content", "StakeholderName")

	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanInsight)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Insight, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanInsight)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &i, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Insight, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO stakeholder_insights (title, content, stakeholder_name, insight_type, related_mapping_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		cmd.Title,
		cmd.Content,
		cmd.StakeholderName,
		cmd.InsightType,
		cmd.RelatedMappingID,
		cmd.CreatedBy,
	).Scan(&id)
	if repository.IsForeignKeyViolation(err) {
		return nil, ErrInvalidReference
	}
	if err != nil {
		return nil, fmt.Errorf("insert insight: %w", err)
	}

	r.logger.Info("insight created", "id", id, "type", cmd.InsightType)
	return r.Find(ctx, id)
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM stakeholder_insights WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	r.logger.Info("insight deleted", "id", id)
	return nil
}
