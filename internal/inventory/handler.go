package inventory

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookden/internal/covers"
	"bookden/internal/events"
	"bookden/pkg/models"
)

type Handler struct {
	store  *Store
	hub    *events.Hub
	covers *covers.Cache
}

func NewHandler(store *Store, hub *events.Hub, coverCache *covers.Cache) *Handler {
	return &Handler{store: store, hub: hub, covers: coverCache}
}

// RegisterRoutes wires the read-only inventory surface.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books", h.listBooks)
	rg.GET("/books/search", h.searchBooks)
	rg.GET("/books/filters", h.bookFilters)
	rg.GET("/books/:id", h.getBook)
	rg.GET("/unplaced-books", h.unplacedBooks)
	rg.GET("/shelves", h.listShelves)
	rg.GET("/shelves/:id/rows", h.listRows)
	rg.GET("/rows", h.allRows)
	rg.GET("/shelf-structure", h.shelfStructure)
}

// RegisterProtectedRoutes wires every mutating operation. The group is
// expected to carry the auth middleware already.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/books/:id", h.deleteBook)
	rg.POST("/books/:id/placement", h.placeBook)
	rg.DELETE("/books/:id/placement", h.removePlacement)
	rg.POST("/shelves", h.createShelf)
	rg.PUT("/shelves/:id", h.updateShelf)
	rg.DELETE("/shelves/:id", h.deleteShelf)
	rg.POST("/shelves/:id/rows", h.createRow)
	rg.PUT("/rows/:id", h.updateRow)
	rg.DELETE("/rows/:id", h.deleteRow)
	rg.PUT("/rows/:id/order", h.reorderRow)
}

// bookResponse decorates a book with the local cover asset name so clients
// can hit /covers/<asset> instead of the remote URL.
type bookResponse struct {
	models.Book
	CoverAsset string `json:"cover_asset,omitempty"`
}

func (h *Handler) respBook(b models.Book) bookResponse {
	return bookResponse{Book: b, CoverAsset: h.covers.AssetName(b.CoverPath)}
}

func (h *Handler) respBooks(books []models.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, h.respBook(b))
	}
	return out
}

func (h *Handler) fail(c *gin.Context, err error) {
	var conflict *SlotConflictError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, ErrRowNotEmpty), errors.Is(err, ErrShelfHasRows):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidSlot):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[inventory] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) listBooks(c *gin.Context) {
	books, err := h.store.ListBooks(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": h.respBooks(books), "total": len(books)})
}

func (h *Handler) getBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	book, err := h.store.GetBook(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if book == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	c.JSON(http.StatusOK, h.respBook(*book))
}

func (h *Handler) unplacedBooks(c *gin.Context) {
	books, err := h.store.UnplacedBooks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": h.respBooks(books), "total": len(books)})
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteBook(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.hub.Broadcast(events.BookDeleted(id))
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type placeRequest struct {
	RowID     int64 `json:"shelf_row_id" binding:"required"`
	SlotIndex int   `json:"slot_index" binding:"required"`
}

func (h *Handler) placeBook(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Place(c.Request.Context(), id, req.RowID, req.SlotIndex); err != nil {
		h.fail(c, err)
		return
	}
	h.hub.Broadcast(events.PlacementSet(id, req.RowID, req.SlotIndex))
	placement, err := h.store.GetPlacement(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, placement)
}

func (h *Handler) removePlacement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.RemovePlacement(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.hub.Broadcast(events.PlacementRemoved(id))
	c.JSON(http.StatusOK, gin.H{"removed": id})
}

func (h *Handler) listShelves(c *gin.Context) {
	shelves, err := h.store.ListShelves(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": shelves})
}

type shelfRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) createShelf(c *gin.Context) {
	var req shelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.store.CreateShelf(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "name": req.Name})
}

func (h *Handler) updateShelf(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req shelfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.UpdateShelf(c.Request.Context(), id, req.Name, req.Description); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name})
}

func (h *Handler) deleteShelf(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteShelf(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) listRows(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rows, err := h.store.ListRows(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (h *Handler) allRows(c *gin.Context) {
	rows, err := h.store.RowsWithShelves(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

type rowCreateRequest struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (h *Handler) createRow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req rowCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rowID, err := h.store.CreateRow(c.Request.Context(), id, req.Name, req.Capacity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": rowID, "shelf_id": id})
}

type rowUpdateRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}

func (h *Handler) updateRow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req rowUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == nil && req.Capacity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}
	if err := h.store.UpdateRow(c.Request.Context(), id, req.Name, req.Capacity); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *Handler) deleteRow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteRow(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type reorderRequest struct {
	BookIDs []int64 `json:"book_ids"`
}

func (h *Handler) reorderRow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.ReorderRow(c.Request.Context(), id, req.BookIDs); err != nil {
		h.fail(c, err)
		return
	}
	h.hub.Broadcast(events.RowReordered(id))
	c.JSON(http.StatusOK, gin.H{"shelf_row_id": id, "count": len(req.BookIDs)})
}

func (h *Handler) shelfStructure(c *gin.Context) {
	structure, err := h.store.ShelfStructure(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": structure})
}
