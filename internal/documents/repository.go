package documents

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/aligner/pkg/extract"
	"github.com/JaimeStill/aligner/pkg/formatting"
	"github.com/JaimeStill/aligner/pkg/pagination"
	"github.com/JaimeStill/aligner/pkg/query"
	"github.com/JaimeStill/aligner/pkg/repository"
	"github.com/JaimeStill/aligner/pkg/storage"
)

type repo struct {
	db            *sql.DB
	storage       storage.System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) System {
	return &repo{
		db:            db,
		storage:       store,
		logger:        logger.With("system", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "OriginalName", "Source", "RelevantAgency")

	filters.Apply(qb)

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return result, nil
}

func (r *repo) find(ctx context.Context, id int64) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Detail, error) {
	d, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + sectionColumns + `
		FROM public.document_sections ds
		WHERE ds.document_id = $1
		ORDER BY ds.section_start, ds.id`

	sections, err := repository.QueryMany(ctx, r.db, q, []any{id}, scanSection)
	if err != nil {
		return nil, fmt.Errorf("query sections for document %d: %w", id, err)
	}
	if sections == nil {
		sections = []Section{}
	}

	return &Detail{Document: *d, Sections: sections}, nil
}

// Validate checks the extension and size of an upload.
func Validate(filename string, size, maxSize int64) error {
	if !Allowed(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidFileType, Extension(filename))
	}
	if size > maxSize {
		return fmt.Errorf(
			"%w: %s exceeds %s",
			ErrFileTooLarge,
			formatting.FormatBytes(size, 1),
			formatting.FormatBytes(maxSize, 0),
		)
	}
	return nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Document, error) {
	if err := Validate(cmd.Filename, int64(len(cmd.Data)), r.maxUploadSize); err != nil {
		return nil, err
	}

	ext := Extension(cmd.Filename)
	spans := r.segment(cmd.Data, cmd.Filename, ext)

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))
	ctype, _ := contentType(ext)

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), ctype); err != nil {
		return nil, fmt.Errorf("upload document blob: %w", err)
	}

	docID, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		var docID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO documents (filename, original_name, file_type, file_size, storage_key, source, publication_date, relevant_agency, uploaded_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			id.String()+ext,
			cmd.Filename,
			ext,
			int64(len(cmd.Data)),
			key,
			cmd.Source,
			cmd.PublicationDate,
			cmd.RelevantAgency,
			cmd.UploadedBy,
		).Scan(&docID)
		if err != nil {
			return 0, err
		}

		if err := insertSections(ctx, tx, docID, spans); err != nil {
			return 0, err
		}
		return docID, nil
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"document created",
		"id", docID,
		"filename", cmd.Filename,
		"sections", len(spans),
	)
	return r.find(ctx, docID)
}

// segment extracts and splits the upload's text. Extraction failures are logged
// and yield no sections; the document is still stored.
func (r *repo) segment(data []byte, filename, ext string) []Span {
	result, err := extract.Extract(data, ext)
	if errors.Is(err, extract.ErrUnsupportedFormat) {
		r.logger.Info("no text extractor for file type", "filename", filename, "file_type", ext)
		return nil
	}
	if err != nil {
		r.logger.Warn("text extraction failed", "filename", filename, "error", err)
		return nil
	}

	spans := Segment(result.Text, MaxSectionLength)
	r.logger.Debug(
		"text extracted",
		"filename", filename,
		"pages", result.Pages,
		"runes", len([]rune(result.Text)),
		"sections", len(spans),
	)
	return spans
}

func insertSections(ctx context.Context, tx *sql.Tx, docID int64, spans []Span) error {
	if len(spans) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_sections (document_id, section_text, section_start, section_end)
		VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare section insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range spans {
		if _, err := stmt.ExecContext(ctx, docID, s.Text, s.Start, s.End); err != nil {
			return fmt.Errorf("insert section: %w", err)
		}
	}
	return nil
}

func (r *repo) Update(ctx context.Context, id int64, cmd UpdateCommand) (*Document, error) {
	if cmd.empty() {
		return nil, ErrNoFields
	}

	set := repository.NewAssignments(id)
	optional := func(col string, v *string) {
		if v != nil {
			set.Set(col, nullIfBlank(*v))
		}
	}
	optional("source", cmd.Source)
	optional("publication_date", cmd.PublicationDate)
	optional("relevant_agency", cmd.RelevantAgency)

	q, args := set.Update("documents", "id = $1")
	if err := repository.ExecExpectOne(ctx, r.db, q, args...); err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document updated", "id", id)
	return r.find(ctx, id)
}

func (r *repo) Open(ctx context.Context, id int64) (*File, error) {
	d, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := r.storage.Download(ctx, d.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %d", ErrFileMissing, id)
	}
	if err != nil {
		return nil, fmt.Errorf("download document %d: %w", id, err)
	}

	ctype, inline := contentType(d.FileType)
	return &File{
		Body:        body,
		Name:        d.OriginalName,
		ContentType: ctype,
		Inline:      inline,
	}, nil
}

// Delete removes the document and everything that depends on it in one
// transaction, then removes the stored file. A missing file is not an error.
func (r *repo) Delete(ctx context.Context, id int64) error {
	key, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (string, error) {
		var key string
		err := tx.QueryRowContext(ctx,
			"SELECT storage_key FROM documents WHERE id = $1 FOR UPDATE", id,
		).Scan(&key)
		if err != nil {
			return "", err
		}

		cascade := []string{
			"DELETE FROM stakeholder_insights WHERE related_mapping_id IN (SELECT id FROM mappings WHERE document_id = $1)",
			"DELETE FROM section_tags WHERE section_id IN (SELECT id FROM document_sections WHERE document_id = $1)",
			"DELETE FROM mappings WHERE document_id = $1",
			"DELETE FROM document_sections WHERE document_id = $1",
		}
		for _, q := range cascade {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return "", err
			}
		}

		return key, repository.ExecExpectOne(ctx, tx, "DELETE FROM documents WHERE id = $1", id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	switch delErr := r.storage.Delete(ctx, key); {
	case errors.Is(delErr, storage.ErrNotFound):
		r.logger.Info("stored file already absent", "id", id, "key", key)
	case delErr != nil:
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", key,
			"error", delErr,
		)
	}

	r.logger.Info("document deleted", "id", id)
	return nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("documents/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" || name == ".." {
		name = "document"
	}
	return url.PathEscape(name)
}

func nullIfBlank(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
