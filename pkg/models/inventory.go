package models

// Book is one physical copy in the inventory. Several rows may carry
// identical metadata (multiple copies of the same work); only the surrogate
// id distinguishes them.
type Book struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Subtitle         string `json:"subtitle,omitempty"`
	Authors          string `json:"authors,omitempty"`
	FirstPublishYear int    `json:"first_publish_year,omitempty"`
	EditionCount     int    `json:"edition_count,omitempty"`
	OpenLibraryKey   string `json:"openlibrary_key,omitempty"`
	CoverURL         string `json:"cover_url,omitempty"`
	CoverPath        string `json:"cover_path,omitempty"`
	ISBN             string `json:"isbn,omitempty"`
	Subjects         string `json:"subjects,omitempty"`
	Publisher        string `json:"publisher,omitempty"`
	PageCount        int    `json:"number_of_pages_median,omitempty"`
	CreatedAt        string `json:"created_at,omitempty"`

	// Placement is the joined shelf position, nil for unplaced copies.
	Placement *PlacementInfo `json:"placement,omitempty"`
}

// Shelf is a named container for rows. RowCount and Capacity are read-time
// aggregates, not stored columns.
type Shelf struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	RowCount    int    `json:"row_count"`
	Capacity    int    `json:"capacity"`
}

// Row belongs to exactly one shelf. Position is unique per shelf and defines
// display order. Used and MaxSlot are read-time aggregates.
type Row struct {
	ID        int64  `json:"id"`
	ShelfID   int64  `json:"shelf_id"`
	ShelfName string `json:"shelf_name,omitempty"`
	Name      string `json:"name,omitempty"`
	Position  int    `json:"position"`
	Capacity  int    `json:"capacity"`
	Used      int    `json:"used"`
	MaxSlot   int    `json:"max_slot,omitempty"`
}

// PlacementInfo describes where one copy sits: shelf, row and 1-based slot.
type PlacementInfo struct {
	BookID    int64  `json:"book_id"`
	ShelfID   int64  `json:"shelf_id"`
	ShelfName string `json:"shelf_name"`
	RowID     int64  `json:"shelf_row_id"`
	RowName   string `json:"row_name"`
	SlotIndex int    `json:"slot_index"`
}

// PlacedBook is one occupied slot inside a row, used by the nested
// shelf-structure view.
type PlacedBook struct {
	SlotIndex int    `json:"slot_index"`
	BookID    int64  `json:"book_id"`
	Title     string `json:"title"`
	Authors   string `json:"authors,omitempty"`
	CoverPath string `json:"cover_path,omitempty"`
}

// RowStructure pairs a row with its placements in slot order.
type RowStructure struct {
	Row        Row          `json:"row"`
	Placements []PlacedBook `json:"placements"`
}

// ShelfStructure is the full nested shelf -> rows -> placements view.
type ShelfStructure struct {
	Shelf Shelf          `json:"shelf"`
	Rows  []RowStructure `json:"rows"`
}
