package tags

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/aligner/pkg/repository"
)

// System defines tag catalog and section tagging operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context) ([]Tag, error)
	Create(ctx context.Context, cmd CreateCommand) (*Tag, error)
	Delete(ctx context.Context, id int64) error

	TagSection(ctx context.Context, tagID, sectionID int64) error
	UntagSection(ctx context.Context, tagID, sectionID int64) error
}

const tagColumns = `t.id, t.name, t.color,
	(SELECT COUNT(*) FROM section_tags st WHERE st.tag_id = t.id),
	t.created_at`

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a tag repository implementing System.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "tags"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags t ORDER BY t.name`

	tags, err := repository.QueryMany(ctx, r.db, q, nil, scanTag)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	return tags, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Tag, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	q := `INSERT INTO tags AS t (name, color) VALUES ($1, $2) RETURNING ` + tagColumns

	t, err := repository.QueryOne(ctx, r.db, q, []any{cmd.Name, cmd.Color}, scanTag)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("tag created", "id", t.ID, "name", t.Name)
	return &t, nil
}

// Delete removes the tag and detaches it from every section.
func (r *repo) Delete(ctx context.Context, id int64) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx, "DELETE FROM section_tags WHERE tag_id = $1", id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM tags WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("tag deleted", "id", id)
	return nil
}

// TagSection attaches a tag to a section. Tagging twice is not an error.
func (r *repo) TagSection(ctx context.Context, tagID, sectionID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO section_tags (section_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (section_id, tag_id) DO NOTHING`,
		sectionID, tagID,
	)
	if repository.IsForeignKeyViolation(err) {
		return ErrInvalidReference
	}
	if err != nil {
		return fmt.Errorf("tag section %d: %w", sectionID, err)
	}

	r.logger.Debug("section tagged", "section_id", sectionID, "tag_id", tagID)
	return nil
}

// UntagSection detaches a tag from a section. Removing an absent tag is not an error.
func (r *repo) UntagSection(ctx context.Context, tagID, sectionID int64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM section_tags WHERE section_id = $1 AND tag_id = $2",
		sectionID, tagID,
	)
	if err != nil {
		return fmt.Errorf("untag section %d: %w", sectionID, err)
	}

	r.logger.Debug("section untagged", "section_id", sectionID, "tag_id", tagID)
	return nil
}

func scanTag(s repository.Scanner) (Tag, error) {
	var t Tag
	err := s.Scan(&t.ID, &t.Name, &t.Color, &t.Sections, &t.CreatedAt)
	return t, err
}
