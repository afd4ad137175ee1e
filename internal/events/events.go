package events

import "time"

// Event types broadcast to connected clients.
const (
	TypeBookCreated      = "book.created"
	TypeBookDeleted      = "book.deleted"
	TypePlacementSet     = "placement.set"
	TypePlacementRemoved = "placement.removed"
	TypeRowReordered     = "row.reordered"
)

// InventoryEvent is one line-JSON notification about a catalog or placement
// change, consumed by UIs that mirror the shelf state live.
type InventoryEvent struct {
	Type      string    `json:"type"`
	BookID    int64     `json:"book_id,omitempty"`
	RowID     int64     `json:"shelf_row_id,omitempty"`
	SlotIndex int       `json:"slot_index,omitempty"`
	At        time.Time `json:"at"`
}

// BookCreated builds the event for a newly committed copy.
func BookCreated(bookID int64) InventoryEvent {
	return InventoryEvent{Type: TypeBookCreated, BookID: bookID, At: time.Now().UTC()}
}

func BookDeleted(bookID int64) InventoryEvent {
	return InventoryEvent{Type: TypeBookDeleted, BookID: bookID, At: time.Now().UTC()}
}

func PlacementSet(bookID, rowID int64, slot int) InventoryEvent {
	return InventoryEvent{Type: TypePlacementSet, BookID: bookID, RowID: rowID, SlotIndex: slot, At: time.Now().UTC()}
}

func PlacementRemoved(bookID int64) InventoryEvent {
	return InventoryEvent{Type: TypePlacementRemoved, BookID: bookID, At: time.Now().UTC()}
}

func RowReordered(rowID int64) InventoryEvent {
	return InventoryEvent{Type: TypeRowReordered, RowID: rowID, At: time.Now().UTC()}
}
