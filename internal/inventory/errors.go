package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers references to books, shelves or rows that do not
	// exist. Callers should treat it as "bad reference", never retry.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSlot rejects placements below the 1-based slot range.
	ErrInvalidSlot = errors.New("slot_index must be 1 or greater")

	// ErrRowNotEmpty guards row deletion while placements remain.
	ErrRowNotEmpty = errors.New("row still contains books")

	// ErrShelfHasRows guards shelf deletion while rows remain.
	ErrShelfHasRows = errors.New("shelf still has rows")
)

// SlotConflictError reports that another book already occupies the requested
// slot. The caller may retry with different parameters; nothing is resolved
// automatically.
type SlotConflictError struct {
	RowID     int64
	SlotIndex int
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %d in row %d is already occupied by another book", e.SlotIndex, e.RowID)
}
