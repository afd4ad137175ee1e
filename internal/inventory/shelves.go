package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bookden/pkg/models"
)

// ListShelves returns every shelf with row count and summed capacity.
func (s *Store) ListShelves(ctx context.Context) ([]models.Shelf, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			s.id, s.name, s.description,
			COUNT(sr.id) AS row_count,
			COALESCE(SUM(sr.capacity), 0) AS capacity
		FROM shelves s
		LEFT JOIN shelf_rows sr ON sr.shelf_id = s.id
		GROUP BY s.id
		ORDER BY lower(s.name)
	`)
	if err != nil {
		return nil, fmt.Errorf("list shelves: %w", err)
	}
	defer rows.Close()

	var out []models.Shelf
	for rows.Next() {
		var shelf models.Shelf
		var description sql.NullString
		if err := rows.Scan(&shelf.ID, &shelf.Name, &description, &shelf.RowCount, &shelf.Capacity); err != nil {
			return nil, fmt.Errorf("scan shelf: %w", err)
		}
		shelf.Description = description.String
		out = append(out, shelf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// CreateShelf adds a named shelf and returns its id. Names are unique.
func (s *Store) CreateShelf(ctx context.Context, name, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO shelves (name, description) VALUES (?, ?)`,
		name, nullStr(description))
	if err != nil {
		return 0, fmt.Errorf("create shelf: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpdateShelf renames or re-describes a shelf.
func (s *Store) UpdateShelf(ctx context.Context, shelfID int64, name, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE shelves SET name = ?, description = ? WHERE id = ?`,
		name, nullStr(description), shelfID)
	if err != nil {
		return fmt.Errorf("update shelf: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shelf %d: %w", shelfID, ErrNotFound)
	}
	return nil
}

// DeleteShelf removes an empty shelf. A shelf that still owns rows is never
// deleted implicitly.
func (s *Store) DeleteShelf(ctx context.Context, shelfID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM shelf_rows WHERE shelf_id = ? LIMIT 1`, shelfID).Scan(&one)
	if err == nil {
		return fmt.Errorf("shelf %d: %w", shelfID, ErrShelfHasRows)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check shelf rows: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM shelves WHERE id = ?`, shelfID)
	if err != nil {
		return fmt.Errorf("delete shelf: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shelf %d: %w", shelfID, ErrNotFound)
	}
	return tx.Commit()
}

const rowSelect = `
	SELECT
		sr.id, sr.shelf_id, sr.name, sr.position, sr.capacity,
		COUNT(p.id) AS used,
		COALESCE(MAX(p.slot_index), 0) AS max_slot
	FROM shelf_rows sr
	LEFT JOIN placements p ON p.shelf_row_id = sr.id
`

func scanRow(scanner interface{ Scan(...any) error }, withShelfName bool) (models.Row, error) {
	var (
		row       models.Row
		name      sql.NullString
		shelfName sql.NullString
	)
	dest := []any{&row.ID, &row.ShelfID, &name, &row.Position, &row.Capacity, &row.Used, &row.MaxSlot}
	if withShelfName {
		dest = append(dest, &shelfName)
	}
	if err := scanner.Scan(dest...); err != nil {
		return models.Row{}, err
	}
	row.Name = name.String
	row.ShelfName = shelfName.String
	return row, nil
}

// ListRows returns a shelf's rows in position order with usage counts.
func (s *Store) ListRows(ctx context.Context, shelfID int64) ([]models.Row, error) {
	rows, err := s.db.QueryContext(ctx, rowSelect+`
		WHERE sr.shelf_id = ?
		GROUP BY sr.id
		ORDER BY sr.position
	`, shelfID)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	defer rows.Close()

	var out []models.Row
	for rows.Next() {
		r, err := scanRow(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GetRow returns one row or nil when the id is unknown.
func (s *Store) GetRow(ctx context.Context, rowID int64) (*models.Row, error) {
	scanner := s.db.QueryRowContext(ctx, `
		SELECT
			sr.id, sr.shelf_id, sr.name, sr.position, sr.capacity,
			COUNT(p.id) AS used,
			COALESCE(MAX(p.slot_index), 0) AS max_slot,
			s.name AS shelf_name
		FROM shelf_rows sr
		LEFT JOIN shelves s ON s.id = sr.shelf_id
		LEFT JOIN placements p ON p.shelf_row_id = sr.id
		WHERE sr.id = ?
		GROUP BY sr.id
	`, rowID)

	r, err := scanRow(scanner, true)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get row: %w", err)
	}
	return &r, nil
}

// RowsWithShelves returns every row joined with its shelf, ordered by shelf
// name then position.
func (s *Store) RowsWithShelves(ctx context.Context) ([]models.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			sr.id, sr.shelf_id, sr.name, sr.position, sr.capacity,
			COUNT(p.id) AS used,
			COALESCE(MAX(p.slot_index), 0) AS max_slot,
			s.name AS shelf_name
		FROM shelf_rows sr
		JOIN shelves s ON s.id = sr.shelf_id
		LEFT JOIN placements p ON p.shelf_row_id = sr.id
		GROUP BY sr.id
		ORDER BY lower(s.name), sr.position
	`)
	if err != nil {
		return nil, fmt.Errorf("rows with shelves: %w", err)
	}
	defer rows.Close()

	var out []models.Row
	for rows.Next() {
		r, err := scanRow(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// CreateRow appends a row to a shelf at the next free position.
func (s *Store) CreateRow(ctx context.Context, shelfID int64, name string, capacity int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM shelves WHERE id = ?`, shelfID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("shelf %d: %w", shelfID, ErrNotFound)
		}
		return 0, fmt.Errorf("check shelf: %w", err)
	}

	var position int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM shelf_rows WHERE shelf_id = ?`,
		shelfID).Scan(&position); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO shelf_rows (shelf_id, name, position, capacity)
		VALUES (?, ?, ?, ?)
	`, shelfID, nullStr(name), position, capacity)
	if err != nil {
		return 0, fmt.Errorf("create row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// UpdateRow changes a row's display name and/or capacity; nil leaves a field
// untouched.
func (s *Store) UpdateRow(ctx context.Context, rowID int64, name *string, capacity *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var assignments []string
	var args []any
	if name != nil {
		assignments = append(assignments, "name = ?")
		args = append(args, nullStr(*name))
	}
	if capacity != nil {
		assignments = append(assignments, "capacity = ?")
		args = append(args, *capacity)
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, rowID)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE shelf_rows SET %s WHERE id = ?`, strings.Join(assignments, ", ")),
		args...)
	if err != nil {
		return fmt.Errorf("update row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("row %d: %w", rowID, ErrNotFound)
	}
	return nil
}

// DeleteRow removes an empty row; placements are never destroyed through a
// parent deletion.
func (s *Store) DeleteRow(ctx context.Context, rowID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM placements WHERE shelf_row_id = ? LIMIT 1`, rowID).Scan(&one)
	if err == nil {
		return fmt.Errorf("row %d: %w", rowID, ErrRowNotEmpty)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check placements: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM shelf_rows WHERE id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("row %d: %w", rowID, ErrNotFound)
	}
	return tx.Commit()
}
