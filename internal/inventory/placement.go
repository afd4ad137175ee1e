package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bookden/pkg/models"
)

// Place binds a book to a 1-based slot inside a row. The same call covers
// first placement and moves: an existing placement for the book, in any row,
// is replaced in the same transaction, so a cross-row move never leaves two
// placements behind. The destination row's capacity grows to the slot index
// when needed; it never shrinks here.
func (s *Store) Place(ctx context.Context, bookID, rowID int64, slotIndex int) error {
	if slotIndex < 1 {
		return ErrInvalidSlot
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM shelf_rows WHERE id = ?`, rowID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("row %d: %w", rowID, ErrNotFound)
		}
		return fmt.Errorf("check row: %w", err)
	}

	// slot free, or occupied by this same book (re-placing is a no-op)
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM placements
		WHERE shelf_row_id = ? AND slot_index = ? AND book_id != ?
	`, rowID, slotIndex, bookID).Scan(&one)
	if err == nil {
		return &SlotConflictError{RowID: rowID, SlotIndex: slotIndex}
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check slot: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO placements (book_id, shelf_row_id, slot_index)
		VALUES (?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			shelf_row_id = excluded.shelf_row_id,
			slot_index = excluded.slot_index
	`, bookID, rowID, slotIndex); err != nil {
		return fmt.Errorf("upsert placement: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE shelf_rows SET capacity = MAX(capacity, ?) WHERE id = ?
	`, slotIndex, rowID); err != nil {
		return fmt.Errorf("grow capacity: %w", err)
	}

	return tx.Commit()
}

// RemovePlacement unshelves a book. Removing an unplaced book is a no-op.
func (s *Store) RemovePlacement(ctx context.Context, bookID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM placements WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("remove placement: %w", err)
	}
	return nil
}

// GetPlacement returns where a book sits, or nil for unplaced copies.
func (s *Store) GetPlacement(ctx context.Context, bookID int64) (*models.PlacementInfo, error) {
	var info models.PlacementInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT
			p.book_id,
			sr.shelf_id,
			s.name,
			p.shelf_row_id,
			COALESCE(sr.name, 'Row ' || sr.position),
			p.slot_index
		FROM placements p
		JOIN shelf_rows sr ON sr.id = p.shelf_row_id
		JOIN shelves s ON s.id = sr.shelf_id
		WHERE p.book_id = ?
	`, bookID).Scan(&info.BookID, &info.ShelfID, &info.ShelfName, &info.RowID, &info.RowName, &info.SlotIndex)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get placement: %w", err)
	}
	return &info, nil
}

// ReorderRow replaces a row's contents wholesale: books absent from the
// given order are unshelved, the rest get slots 1..N in order, and the row's
// capacity becomes exactly N. Unlike Place this can shrink capacity.
func (s *Store) ReorderRow(ctx context.Context, rowID int64, bookIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM shelf_rows WHERE id = ?`, rowID).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("row %d: %w", rowID, ErrNotFound)
		}
		return fmt.Errorf("check row: %w", err)
	}

	if len(bookIDs) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM placements WHERE shelf_row_id = ?`, rowID); err != nil {
			return fmt.Errorf("clear row: %w", err)
		}
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(bookIDs)), ",")
		args := make([]any, 0, len(bookIDs)+1)
		args = append(args, rowID)
		for _, id := range bookIDs {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			DELETE FROM placements
			WHERE shelf_row_id = ? AND book_id NOT IN (%s)
		`, placeholders), args...); err != nil {
			return fmt.Errorf("prune row: %w", err)
		}
	}

	// Park surviving placements at negative indices so reassignments cannot
	// trip the per-row slot uniqueness mid-loop (swaps, left shifts).
	if _, err := tx.ExecContext(ctx,
		`UPDATE placements SET slot_index = -slot_index WHERE shelf_row_id = ?`, rowID); err != nil {
		return fmt.Errorf("park slots: %w", err)
	}

	for i, bookID := range bookIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO placements (book_id, shelf_row_id, slot_index)
			VALUES (?, ?, ?)
			ON CONFLICT(book_id) DO UPDATE SET
				shelf_row_id = excluded.shelf_row_id,
				slot_index = excluded.slot_index
		`, bookID, rowID, i+1); err != nil {
			return fmt.Errorf("assign slot %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE shelf_rows SET capacity = ? WHERE id = ?`, len(bookIDs), rowID); err != nil {
		return fmt.Errorf("set capacity: %w", err)
	}

	return tx.Commit()
}

// ShelfStructure returns the nested shelf -> rows -> placements view used by
// the shelf visualisation.
func (s *Store) ShelfStructure(ctx context.Context) ([]models.ShelfStructure, error) {
	shelves, err := s.ListShelves(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ShelfStructure, 0, len(shelves))
	for _, shelf := range shelves {
		rows, err := s.ListRows(ctx, shelf.ID)
		if err != nil {
			return nil, err
		}

		entry := models.ShelfStructure{Shelf: shelf, Rows: make([]models.RowStructure, 0, len(rows))}
		for _, row := range rows {
			placements, err := s.rowPlacements(ctx, row.ID)
			if err != nil {
				return nil, err
			}
			entry.Rows = append(entry.Rows, models.RowStructure{Row: row, Placements: placements})
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) rowPlacements(ctx context.Context, rowID int64) ([]models.PlacedBook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.slot_index, b.id, b.title, b.authors, b.cover_path
		FROM placements p
		JOIN books b ON b.id = p.book_id
		WHERE p.shelf_row_id = ?
		ORDER BY p.slot_index
	`, rowID)
	if err != nil {
		return nil, fmt.Errorf("row placements: %w", err)
	}
	defer rows.Close()

	var out []models.PlacedBook
	for rows.Next() {
		var pb models.PlacedBook
		var authors, coverPath sql.NullString
		if err := rows.Scan(&pb.SlotIndex, &pb.BookID, &pb.Title, &authors, &coverPath); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		pb.Authors = authors.String
		pb.CoverPath = coverPath.String
		out = append(out, pb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
