package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"photofind/internal/catalog/migrations"
	"photofind/internal/gallery"
	"photofind/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCatalog implements the gallery.Catalog interface using SQLite.
//
// Writes are single autocommitted statements, so each indexed file is
// durable as soon as its upsert returns; a crash mid-run loses at most
// the in-flight file. WAL mode lets a reader (search) overlap with the
// single writer (indexing), but concurrent indexing runs against the same
// catalog are not coordinated.
type SQLiteCatalog struct {
	db   *sql.DB
	path string
}

// NewSQLiteCatalog creates a new SQLite catalog connection.
// path can be a file path or ":memory:" for an in-memory catalog.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteCatalog{db: db, path: path}, nil
}

// NewSQLiteCatalogFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteCatalogFromDB(db *sql.DB) *SQLiteCatalog {
	return &SQLiteCatalog{db: db, path: ""}
}

// OpenConnection opens and configures a SQLite connection with the
// PRAGMAs the catalog relies on. Exported for tools and tests that need
// a properly configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL permits one writer with concurrent readers.
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Image operations

func (c *SQLiteCatalog) FindByPath(path string) (*model.ImageRecord, error) {
	row := c.db.QueryRow(`
		SELECT id, path, mtime, caption, embedding, deleted,
		       has_people, has_faces, has_text, is_indoor, is_outdoor, is_document, is_screenshot
		FROM images WHERE path = ?`, path)

	rec, err := scanImage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding image by path: %w", err)
	}
	return rec, nil
}

func (c *SQLiteCatalog) Upsert(path string, mtime float64, caption string, embedding []byte, tags model.TagSet) error {
	_, err := c.db.Exec(`
		INSERT INTO images(
			path, mtime, caption, embedding, deleted,
			has_people, has_faces, has_text, is_indoor, is_outdoor, is_document, is_screenshot
		)
		VALUES(?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime=excluded.mtime,
			caption=excluded.caption,
			embedding=excluded.embedding,
			deleted=0,
			has_people=excluded.has_people,
			has_faces=excluded.has_faces,
			has_text=excluded.has_text,
			is_indoor=excluded.is_indoor,
			is_outdoor=excluded.is_outdoor,
			is_document=excluded.is_document,
			is_screenshot=excluded.is_screenshot`,
		path, mtime, caption, embedding,
		tagValue(tags.HasPeople), tagValue(tags.HasFaces), tagValue(tags.HasText),
		tagValue(tags.IsIndoor), tagValue(tags.IsOutdoor), tagValue(tags.IsDocument),
		tagValue(tags.IsScreenshot),
	)
	if err != nil {
		return fmt.Errorf("upserting image: %w", err)
	}
	return nil
}

func (c *SQLiteCatalog) UpdateTags(path string, mtime float64, tags model.TagSet) error {
	_, err := c.db.Exec(`
		UPDATE images SET
			mtime=?,
			has_people=?, has_faces=?, has_text=?,
			is_indoor=?, is_outdoor=?, is_document=?, is_screenshot=?
		WHERE path=?`,
		mtime,
		tagValue(tags.HasPeople), tagValue(tags.HasFaces), tagValue(tags.HasText),
		tagValue(tags.IsIndoor), tagValue(tags.IsOutdoor), tagValue(tags.IsDocument),
		tagValue(tags.IsScreenshot),
		path,
	)
	if err != nil {
		return fmt.Errorf("updating tags: %w", err)
	}
	return nil
}

func (c *SQLiteCatalog) MarkDeleted(paths []string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range paths {
		// Unknown paths match zero rows, which is fine.
		if _, err := tx.Exec("UPDATE images SET deleted=1 WHERE path=?", p); err != nil {
			return fmt.Errorf("marking %s deleted: %w", p, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (c *SQLiteCatalog) QueryCandidates(filters model.SearchFilters) ([]*model.ImageRecord, error) {
	conditions := []string{"deleted=0", "embedding IS NOT NULL"}
	if filters.ExcludePeople {
		conditions = append(conditions, "(has_people IS NULL OR has_people=0)")
	}
	if filters.ExcludeFaces {
		conditions = append(conditions, "(has_faces IS NULL OR has_faces=0)")
	}
	if filters.ExcludeText {
		conditions = append(conditions, "(has_text IS NULL OR has_text=0)")
	}
	if filters.OnlyDocuments {
		conditions = append(conditions, "is_document=1")
	}
	if filters.OnlyScreenshots {
		conditions = append(conditions, "is_screenshot=1")
	}
	switch filters.Environment {
	case model.EnvIndoor:
		conditions = append(conditions, "is_indoor=1")
	case model.EnvOutdoor:
		conditions = append(conditions, "is_outdoor=1")
	}

	query := `
		SELECT id, path, mtime, caption, embedding, deleted,
		       has_people, has_faces, has_text, is_indoor, is_outdoor, is_document, is_screenshot
		FROM images WHERE ` + strings.Join(conditions, " AND ")

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying candidates: %w", err)
	}
	defer rows.Close()

	var records []*model.ImageRecord
	for rows.Next() {
		rec, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidates: %w", err)
	}
	return records, nil
}

func (c *SQLiteCatalog) CountImages(includeDeleted bool) (int64, error) {
	query := "SELECT COUNT(*) FROM images"
	if !includeDeleted {
		query += " WHERE deleted=0"
	}
	var n int64
	if err := c.db.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return n, nil
}

func (c *SQLiteCatalog) EmbeddingDim() (int, error) {
	var byteLen int64
	err := c.db.QueryRow("SELECT length(embedding) FROM images WHERE embedding IS NOT NULL LIMIT 1").Scan(&byteLen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil // No embeddings yet
	}
	if err != nil {
		return 0, fmt.Errorf("reading embedding dimension: %w", err)
	}
	return int(byteLen / 4), nil
}

// Index run tracking

func (c *SQLiteCatalog) CreateIndexRun(run *model.IndexRun) error {
	_, err := c.db.Exec(`
		INSERT INTO index_runs(id, operation, parameters, started_at, status)
		VALUES(?, ?, ?, ?, ?)`,
		run.ID, run.Operation, run.Parameters, run.StartedAt, run.Status,
	)
	if err != nil {
		return fmt.Errorf("creating index run: %w", err)
	}
	return nil
}

func (c *SQLiteCatalog) FinishIndexRun(id string, status string) error {
	_, err := c.db.Exec(
		"UPDATE index_runs SET finished_at=?, status=? WHERE id=?",
		time.Now(), status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing index run: %w", err)
	}
	return nil
}

func (c *SQLiteCatalog) ListIndexRuns(limit int) ([]*model.IndexRun, error) {
	rows, err := c.db.Query(`
		SELECT id, operation, parameters, started_at, finished_at, status
		FROM index_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing index runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.IndexRun
	for rows.Next() {
		var run model.IndexRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.Operation, &run.Parameters, &run.StartedAt, &finished, &run.Status); err != nil {
			return nil, fmt.Errorf("scanning index run: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index runs: %w", err)
	}
	return runs, nil
}

// Path returns the database file path (or ":memory:" for in-memory catalogs).
func (c *SQLiteCatalog) Path() string {
	return c.path
}

// CheckSchema reports whether the catalog schema is at the version this
// binary ships migrations for.
func (c *SQLiteCatalog) CheckSchema() error {
	return migrations.CheckStatus(c.db)
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanImage(s scanner) (*model.ImageRecord, error) {
	var rec model.ImageRecord
	var caption sql.NullString
	var deleted int64
	var people, faces, text, indoor, outdoor, document, screenshot sql.NullInt64

	err := s.Scan(
		&rec.ID, &rec.Path, &rec.MTime, &caption, &rec.Embedding, &deleted,
		&people, &faces, &text, &indoor, &outdoor, &document, &screenshot,
	)
	if err != nil {
		return nil, err
	}

	rec.Caption = caption.String
	rec.Deleted = deleted != 0
	rec.Tags = model.TagSet{
		HasPeople:    tagState(people),
		HasFaces:     tagState(faces),
		HasText:      tagState(text),
		IsIndoor:     tagState(indoor),
		IsOutdoor:    tagState(outdoor),
		IsDocument:   tagState(document),
		IsScreenshot: tagState(screenshot),
	}
	return &rec, nil
}

// tagValue maps a TagState to its column value: NULL / 0 / 1.
func tagValue(t model.TagState) any {
	switch t {
	case model.TagTrue:
		return 1
	case model.TagFalse:
		return 0
	default:
		return nil
	}
}

func tagState(v sql.NullInt64) model.TagState {
	if !v.Valid {
		return model.TagUnknown
	}
	return model.TagOf(v.Int64 != 0)
}

// Compile-time check that SQLiteCatalog implements gallery.Catalog
var _ gallery.Catalog = (*SQLiteCatalog)(nil)
