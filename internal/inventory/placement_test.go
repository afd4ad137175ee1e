package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestPlaceRejectsInvalidSlot(t *testing.T) {
	s := newTestStore(t)
	if err := s.Place(context.Background(), 1, 1, 0); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("slot 0: expected ErrInvalidSlot, got %v", err)
	}
	if err := s.Place(context.Background(), 1, 1, -3); !errors.Is(err, ErrInvalidSlot) {
		t.Errorf("negative slot: expected ErrInvalidSlot, got %v", err)
	}
}

func TestPlaceUnknownRow(t *testing.T) {
	s := newTestStore(t)
	id := addBook(t, s, "Dune")
	if err := s.Place(context.Background(), id, 42, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPlaceAndGetPlacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := addBook(t, s, "Dune")
	shelfID, rowID := addShelfAndRow(t, s, "Wall", 5)

	if err := s.Place(ctx, id, rowID, 3); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetPlacement(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if info == nil {
		t.Fatal("expected a placement")
	}
	if info.ShelfID != shelfID || info.RowID != rowID || info.SlotIndex != 3 {
		t.Errorf("placement: %+v", info)
	}
	if info.ShelfName != "Wall" {
		t.Errorf("shelf name: %q", info.ShelfName)
	}
}

func TestPlaceSameSlotConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "Dune")
	b := addBook(t, s, "Hyperion")
	_, rowID := addShelfAndRow(t, s, "Wall", 5)

	if err := s.Place(ctx, a, rowID, 2); err != nil {
		t.Fatal(err)
	}

	err := s.Place(ctx, b, rowID, 2)
	var conflict *SlotConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected SlotConflictError, got %v", err)
	}
	if conflict.RowID != rowID || conflict.SlotIndex != 2 {
		t.Errorf("conflict details: %+v", conflict)
	}
}

func TestPlaceSameBookSameSlotIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := addBook(t, s, "Dune")
	_, rowID := addShelfAndRow(t, s, "Wall", 5)

	if err := s.Place(ctx, id, rowID, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(ctx, id, rowID, 2); err != nil {
		t.Errorf("re-placing in the same slot should succeed, got %v", err)
	}
}

func TestPlaceMovesBookAcrossRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := addBook(t, s, "Dune")
	_, rowA := addShelfAndRow(t, s, "Wall", 5)
	_, rowB := addShelfAndRow(t, s, "Desk", 5)

	if err := s.Place(ctx, id, rowA, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(ctx, id, rowB, 4); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetPlacement(ctx, id)
	if err != nil || info == nil {
		t.Fatalf("get placement: %v", err)
	}
	if info.RowID != rowB || info.SlotIndex != 4 {
		t.Errorf("move left stale placement: %+v", info)
	}

	// the old slot must be free again
	other := addBook(t, s, "Hyperion")
	if err := s.Place(ctx, other, rowA, 1); err != nil {
		t.Errorf("old slot should be free after move, got %v", err)
	}
}

func TestPlaceGrowsCapacity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := addBook(t, s, "Dune")
	_, rowID := addShelfAndRow(t, s, "Wall", 2)

	if err := s.Place(ctx, id, rowID, 7); err != nil {
		t.Fatal(err)
	}

	row, err := s.GetRow(ctx, rowID)
	if err != nil || row == nil {
		t.Fatalf("get row: %v", err)
	}
	if row.Capacity != 7 {
		t.Errorf("capacity: got %d, want 7", row.Capacity)
	}

	// placing below capacity must not shrink it
	other := addBook(t, s, "Hyperion")
	if err := s.Place(ctx, other, rowID, 1); err != nil {
		t.Fatal(err)
	}
	row, err = s.GetRow(ctx, rowID)
	if err != nil || row == nil {
		t.Fatalf("get row: %v", err)
	}
	if row.Capacity != 7 {
		t.Errorf("capacity shrank: got %d", row.Capacity)
	}
}

func TestConcurrentPlacementSameSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, rowID := addShelfAndRow(t, s, "Wall", 5)

	const workers = 8
	ids := make([]int64, workers)
	for i := range ids {
		ids[i] = addBook(t, s, "Copy")
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Place(ctx, ids[i], rowID, 1)
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		var conflict *SlotConflictError
		switch {
		case err == nil:
			wins++
		case errors.As(err, &conflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("exactly one placement should win, got %d wins %d conflicts", wins, conflicts)
	}
}

func TestRemovePlacementIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := addBook(t, s, "Dune")
	_, rowID := addShelfAndRow(t, s, "Wall", 5)
	if err := s.Place(ctx, id, rowID, 1); err != nil {
		t.Fatal(err)
	}

	if err := s.RemovePlacement(ctx, id); err != nil {
		t.Fatal(err)
	}
	if err := s.RemovePlacement(ctx, id); err != nil {
		t.Errorf("removing an unplaced book should be a no-op, got %v", err)
	}

	info, err := s.GetPlacement(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Errorf("placement should be gone, got %+v", info)
	}
}

func TestReorderRowAssignsSequentialSlots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "A")
	b := addBook(t, s, "B")
	c := addBook(t, s, "C")
	_, rowID := addShelfAndRow(t, s, "Wall", 10)

	if err := s.Place(ctx, a, rowID, 4); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(ctx, b, rowID, 8); err != nil {
		t.Fatal(err)
	}

	if err := s.ReorderRow(ctx, rowID, []int64{c, a, b}); err != nil {
		t.Fatal(err)
	}

	for i, id := range []int64{c, a, b} {
		info, err := s.GetPlacement(ctx, id)
		if err != nil || info == nil {
			t.Fatalf("placement for %d: %v", id, err)
		}
		if info.SlotIndex != i+1 {
			t.Errorf("book %d: slot %d, want %d", id, info.SlotIndex, i+1)
		}
	}

	row, err := s.GetRow(ctx, rowID)
	if err != nil || row == nil {
		t.Fatal(err)
	}
	if row.Capacity != 3 {
		t.Errorf("capacity should become exactly the count, got %d", row.Capacity)
	}
}

func TestReorderRowSwapsBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "A")
	b := addBook(t, s, "B")
	_, rowID := addShelfAndRow(t, s, "Wall", 5)

	if err := s.Place(ctx, a, rowID, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(ctx, b, rowID, 2); err != nil {
		t.Fatal(err)
	}

	if err := s.ReorderRow(ctx, rowID, []int64{b, a}); err != nil {
		t.Fatal(err)
	}

	infoA, err := s.GetPlacement(ctx, a)
	if err != nil || infoA == nil {
		t.Fatal(err)
	}
	infoB, err := s.GetPlacement(ctx, b)
	if err != nil || infoB == nil {
		t.Fatal(err)
	}
	if infoB.SlotIndex != 1 || infoA.SlotIndex != 2 {
		t.Errorf("swap: b at %d, a at %d", infoB.SlotIndex, infoA.SlotIndex)
	}
}

func TestReorderRowDropsOmittedBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "A")
	b := addBook(t, s, "B")
	_, rowID := addShelfAndRow(t, s, "Wall", 5)

	if err := s.Place(ctx, a, rowID, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(ctx, b, rowID, 2); err != nil {
		t.Fatal(err)
	}

	if err := s.ReorderRow(ctx, rowID, []int64{b}); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetPlacement(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Errorf("omitted book should be unshelved, got %+v", info)
	}
}

func TestReorderRowEmptyClearsRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "A")
	_, rowID := addShelfAndRow(t, s, "Wall", 5)
	if err := s.Place(ctx, a, rowID, 3); err != nil {
		t.Fatal(err)
	}

	if err := s.ReorderRow(ctx, rowID, nil); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetPlacement(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Errorf("row should be empty, got %+v", info)
	}
	row, err := s.GetRow(ctx, rowID)
	if err != nil || row == nil {
		t.Fatal(err)
	}
	if row.Capacity != 0 {
		t.Errorf("empty reorder should zero the capacity, got %d", row.Capacity)
	}
}

func TestReorderRowPullsFromOtherRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "A")
	_, rowA := addShelfAndRow(t, s, "Wall", 5)
	_, rowB := addShelfAndRow(t, s, "Desk", 5)
	if err := s.Place(ctx, a, rowA, 2); err != nil {
		t.Fatal(err)
	}

	if err := s.ReorderRow(ctx, rowB, []int64{a}); err != nil {
		t.Fatal(err)
	}

	info, err := s.GetPlacement(ctx, a)
	if err != nil || info == nil {
		t.Fatal(err)
	}
	if info.RowID != rowB || info.SlotIndex != 1 {
		t.Errorf("book should have moved into the reordered row: %+v", info)
	}
}

func TestReorderUnknownRow(t *testing.T) {
	s := newTestStore(t)
	if err := s.ReorderRow(context.Background(), 42, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestShelfStructure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := addBook(t, s, "A")
	b := addBook(t, s, "B")
	shelfID, rowID := addShelfAndRow(t, s, "Wall", 5)
	if err := s.Place(ctx, a, rowID, 2); err != nil {
		t.Fatal(err)
	}
	if err := s.Place(ctx, b, rowID, 1); err != nil {
		t.Fatal(err)
	}

	structure, err := s.ShelfStructure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(structure) != 1 || structure[0].Shelf.ID != shelfID {
		t.Fatalf("structure: %+v", structure)
	}
	rows := structure[0].Rows
	if len(rows) != 1 || len(rows[0].Placements) != 2 {
		t.Fatalf("rows: %+v", rows)
	}
	if rows[0].Placements[0].BookID != b || rows[0].Placements[1].BookID != a {
		t.Errorf("placements should come back in slot order: %+v", rows[0].Placements)
	}
}
