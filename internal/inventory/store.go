package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"bookden/pkg/models"
)

// Store is the transactional inventory over sqlite. Every state-changing
// operation takes the store mutex and runs in one transaction, so compound
// read-modify-write sequences (slot checks, deletion guards) cannot
// interleave. Reads go straight to the pool.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// bookColumns is the stored field list shared by insert and update.
var bookColumns = []string{
	"title", "subtitle", "authors", "first_publish_year", "edition_count",
	"openlibrary_key", "cover_url", "cover_path", "isbn", "subjects",
	"publisher", "number_of_pages_median",
}

func bookValues(b models.Book) []any {
	return []any{
		b.Title, nullStr(b.Subtitle), nullStr(b.Authors), nullInt(b.FirstPublishYear),
		nullInt(b.EditionCount), nullStr(b.OpenLibraryKey), nullStr(b.CoverURL),
		nullStr(b.CoverPath), nullStr(b.ISBN), nullStr(b.Subjects),
		nullStr(b.Publisher), nullInt(b.PageCount),
	}
}

// AddBook inserts a new copy, or updates the existing row with the same
// permanent key or ISBN when allowMultiple is false. Returns the book id and
// whether a new row was created.
func (s *Store) AddBook(ctx context.Context, b models.Book, allowMultiple bool) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if !allowMultiple {
		var existingID int64
		var existingCoverPath sql.NullString
		found := false

		if b.OpenLibraryKey != "" {
			err := tx.QueryRowContext(ctx,
				`SELECT id, cover_path FROM books WHERE openlibrary_key = ?`,
				b.OpenLibraryKey,
			).Scan(&existingID, &existingCoverPath)
			if err != nil && err != sql.ErrNoRows {
				return 0, false, fmt.Errorf("lookup by key: %w", err)
			}
			found = err == nil
		}
		if !found && b.ISBN != "" {
			err := tx.QueryRowContext(ctx,
				`SELECT id, cover_path FROM books WHERE isbn = ?`,
				b.ISBN,
			).Scan(&existingID, &existingCoverPath)
			if err != nil && err != sql.ErrNoRows {
				return 0, false, fmt.Errorf("lookup by isbn: %w", err)
			}
			found = err == nil
		}

		if found {
			if b.CoverPath == "" && existingCoverPath.Valid {
				b.CoverPath = existingCoverPath.String
			}
			assignments := make([]string, len(bookColumns))
			for i, col := range bookColumns {
				assignments[i] = col + " = ?"
			}
			args := append(bookValues(b), existingID)
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`UPDATE books SET %s WHERE id = ?`, strings.Join(assignments, ", ")),
				args...,
			); err != nil {
				return 0, false, fmt.Errorf("update book: %w", err)
			}
			if err := tx.Commit(); err != nil {
				return 0, false, fmt.Errorf("commit: %w", err)
			}
			return existingID, false, nil
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(bookColumns)), ", ")
	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO books (%s) VALUES (%s)`, strings.Join(bookColumns, ", "), placeholders),
		bookValues(b)...,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit: %w", err)
	}
	return id, true, nil
}

// UpdateCoverPath records the local cover file for a book; empty clears it.
func (s *Store) UpdateCoverPath(ctx context.Context, bookID int64, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`UPDATE books SET cover_path = ? WHERE id = ?`, nullStr(path), bookID)
	if err != nil {
		return fmt.Errorf("update cover path: %w", err)
	}
	return nil
}

const bookSelect = `
	SELECT
		b.id, b.title, b.subtitle, b.authors, b.first_publish_year,
		b.edition_count, b.openlibrary_key, b.cover_url, b.cover_path,
		b.isbn, b.subjects, b.publisher, b.number_of_pages_median, b.created_at,
		p.shelf_row_id, p.slot_index,
		sr.name, s.id, s.name
	FROM books b
	LEFT JOIN placements p ON p.book_id = b.id
	LEFT JOIN shelf_rows sr ON sr.id = p.shelf_row_id
	LEFT JOIN shelves s ON s.id = sr.shelf_id
`

func scanBook(row interface{ Scan(...any) error }) (models.Book, error) {
	var (
		b                                    models.Book
		subtitle, authors, key, coverURL     sql.NullString
		coverPath, isbn, subjects, publisher sql.NullString
		createdAt, rowName, shelfName        sql.NullString
		year, editions, pages                sql.NullInt64
		rowID, slot, shelfID                 sql.NullInt64
	)
	if err := row.Scan(
		&b.ID, &b.Title, &subtitle, &authors, &year,
		&editions, &key, &coverURL, &coverPath,
		&isbn, &subjects, &publisher, &pages, &createdAt,
		&rowID, &slot,
		&rowName, &shelfID, &shelfName,
	); err != nil {
		return models.Book{}, err
	}

	b.Subtitle = subtitle.String
	b.Authors = authors.String
	b.FirstPublishYear = int(year.Int64)
	b.EditionCount = int(editions.Int64)
	b.OpenLibraryKey = key.String
	b.CoverURL = coverURL.String
	b.CoverPath = coverPath.String
	b.ISBN = isbn.String
	b.Subjects = subjects.String
	b.Publisher = publisher.String
	b.PageCount = int(pages.Int64)
	b.CreatedAt = createdAt.String

	if rowID.Valid {
		b.Placement = &models.PlacementInfo{
			BookID:    b.ID,
			ShelfID:   shelfID.Int64,
			ShelfName: shelfName.String,
			RowID:     rowID.Int64,
			RowName:   rowName.String,
			SlotIndex: int(slot.Int64),
		}
	}
	return b, nil
}

// GetBook returns one book with its placement, or nil if the id is unknown.
func (s *Store) GetBook(ctx context.Context, bookID int64) (*models.Book, error) {
	row := s.db.QueryRowContext(ctx, bookSelect+` WHERE b.id = ?`, bookID)
	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

// ListBooks returns all copies with placements, optionally filtered by a
// case-insensitive substring over title, authors, publisher and ISBN.
func (s *Store) ListBooks(ctx context.Context, search string) ([]models.Book, error) {
	query := bookSelect
	var args []any
	if search != "" {
		query += `
			WHERE lower(b.title) LIKE ?
			   OR lower(b.authors) LIKE ?
			   OR lower(b.publisher) LIKE ?
			   OR lower(COALESCE(b.isbn, '')) LIKE ?
		`
		like := "%" + strings.ToLower(search) + "%"
		args = []any{like, like, like, like}
	}
	query += ` ORDER BY lower(b.title)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// UnplacedBooks returns copies without a placement, title order.
func (s *Store) UnplacedBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := s.db.QueryContext(ctx, bookSelect+`
		WHERE p.id IS NULL
		ORDER BY lower(b.title)
	`)
	if err != nil {
		return nil, fmt.Errorf("unplaced books: %w", err)
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// DeleteBook removes a copy; the placement cascade frees its slot.
func (s *Store) DeleteBook(ctx context.Context, bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("book %d: %w", bookID, ErrNotFound)
	}
	return nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
