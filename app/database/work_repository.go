package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrDuplicateWork is returned when a work ID is added twice.
var ErrDuplicateWork = errors.New("work already in database")

// extraColumns lists the passthrough metadata columns in the order they are
// read and written. List-typed remote values are comma-joined before they
// reach this layer, so every column is flat text.
var extraColumns = []string{
	"bookmarks", "categories", "characters", "complete", "comments",
	"fandoms", "hits", "kudos", "language", "rating", "relationships",
	"restricted", "status", "summary", "tags", "warnings", "words",
	"collections", "authors", "series", "chapter_titles",
}

var workColumns = "id, title, nchapters, expected_chapters, date_updated, date_published, date_edited, fetch_error, " +
	strings.Join(extraColumns, ", ") + ", created_at, updated_at"

var _ WorkRepository = (*SQLWorkRepository)(nil)

// SQLWorkRepository handles database operations for tracked works.
type SQLWorkRepository struct {
	db *DB
}

func NewWorkRepository(db *DB) *SQLWorkRepository {
	return &SQLWorkRepository{db: db}
}

// GetWorkIDs returns all tracked work IDs in canonical (ascending ID) order.
func (r *SQLWorkRepository) GetWorkIDs() ([]int64, error) {
	rows, err := r.db.Query(`SELECT id FROM fics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get work IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan work ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work IDs: %w", err)
	}

	return ids, nil
}

// GetAllWorks returns every tracked work in canonical order. This order is
// the report order for list and scrape runs.
func (r *SQLWorkRepository) GetAllWorks() ([]Work, error) {
	rows, err := r.db.Query(`SELECT ` + workColumns + ` FROM fics ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get works: %w", err)
	}
	defer rows.Close()

	var works []Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work rows: %w", err)
	}

	return works, nil
}

// GetWork returns a single work, or nil when the ID is not tracked.
func (r *SQLWorkRepository) GetWork(id int64) (*Work, error) {
	row := r.db.QueryRow(`SELECT `+workColumns+` FROM fics WHERE id = ?`, id)

	work, err := scanWork(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &work, nil
}

// GetWorkCount returns the number of tracked works.
func (r *SQLWorkRepository) GetWorkCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM fics`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get work count: %w", err)
	}
	return count, nil
}

// CreateWork inserts an ID-only row for a newly tracked work.
func (r *SQLWorkRepository) CreateWork(id int64) error {
	existing, err := r.GetWork(id)
	if err != nil {
		return fmt.Errorf("failed to check existing work: %w", err)
	}
	if existing != nil {
		return ErrDuplicateWork
	}

	if _, err := r.db.Exec(`INSERT INTO fics (id) VALUES (?)`, id); err != nil {
		return fmt.Errorf("failed to create work: %w", err)
	}

	return nil
}

// UpdateWork replaces all fetched fields of a work with a fresh snapshot and
// clears any previous fetch error. Full replace, not merge.
func (r *SQLWorkRepository) UpdateWork(id int64, snap WorkSnapshot) error {
	if err := validateSnapshot(snap); err != nil {
		return fmt.Errorf("invalid snapshot for work %d: %w", id, err)
	}

	var sets []string
	var args []interface{}

	sets = append(sets,
		"title = ?", "nchapters = ?", "expected_chapters = ?",
		"date_updated = ?", "date_published = ?", "date_edited = ?")
	args = append(args, snap.Title, snap.Chapters, nullableInt(snap.ExpectedChapters),
		snap.DateUpdated, snap.DatePublished, snap.DateEdited)

	for _, col := range extraColumns {
		sets = append(sets, col+" = ?")
		if value, ok := snap.Extra[col]; ok {
			args = append(args, value)
		} else {
			args = append(args, nil)
		}
	}

	sets = append(sets, "fetch_error = NULL", "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := "UPDATE fics SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update work: %w", err)
	}

	return requireRow(result, id)
}

// UpdateWorkFetchError records a failed fetch without touching any
// previously fetched field.
func (r *SQLWorkRepository) UpdateWorkFetchError(id int64, desc string) error {
	result, err := r.db.Exec(`
		UPDATE fics
		SET fetch_error = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, desc, id)
	if err != nil {
		return fmt.Errorf("failed to update fetch error: %w", err)
	}

	return requireRow(result, id)
}

// DeleteWork removes a tracked work.
func (r *SQLWorkRepository) DeleteWork(id int64) error {
	result, err := r.db.Exec(`DELETE FROM fics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work: %w", err)
	}

	return requireRow(result, id)
}

func validateSnapshot(snap WorkSnapshot) error {
	if snap.Title == "" {
		return fmt.Errorf("title must not be empty")
	}
	if snap.Chapters < 0 {
		return fmt.Errorf("chapter count must not be negative, got %d", snap.Chapters)
	}
	if snap.ExpectedChapters != nil && *snap.ExpectedChapters < 0 {
		return fmt.Errorf("expected chapter count must not be negative, got %d", *snap.ExpectedChapters)
	}
	for _, date := range []string{snap.DateUpdated, snap.DatePublished, snap.DateEdited} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("timestamp %q does not match layout %s", date, DateLayout)
		}
	}
	return nil
}

func nullableInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func requireRow(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("work %d not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWork(row rowScanner) (Work, error) {
	var work Work
	var title, dateUpdated, datePublished, dateEdited, fetchError sql.NullString
	var chapters, expectedChapters sql.NullInt64

	extras := make([]sql.NullString, len(extraColumns))

	dest := []interface{}{
		&work.ID, &title, &chapters, &expectedChapters,
		&dateUpdated, &datePublished, &dateEdited, &fetchError,
	}
	for i := range extras {
		dest = append(dest, &extras[i])
	}
	dest = append(dest, &work.CreatedAt, &work.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return work, err
		}
		return work, fmt.Errorf("failed to scan work row: %w", err)
	}

	work.Title = nullString(title)
	work.Chapters = nullInt(chapters)
	work.ExpectedChapters = nullInt(expectedChapters)
	work.DateUpdated = nullString(dateUpdated)
	work.DatePublished = nullString(datePublished)
	work.DateEdited = nullString(dateEdited)
	work.FetchError = nullString(fetchError)

	work.Extra = make(map[string]string, len(extraColumns))
	for i, col := range extraColumns {
		if extras[i].Valid {
			work.Extra[col] = extras[i].String
		}
	}

	return work, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
