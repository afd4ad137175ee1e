package search

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookden/internal/covers"
	"bookden/internal/events"
	"bookden/internal/inventory"
	"bookden/internal/openlibrary"
	"bookden/internal/reconcile"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves catalog lookups against Open Library and turns a chosen
// result into an inventory copy, enriched through the reconciler.
type Handler struct {
	client     *openlibrary.Client
	store      *inventory.Store
	reconciler *reconcile.Reconciler
	covers     *covers.Cache
	hub        *events.Hub
}

func NewHandler(client *openlibrary.Client, store *inventory.Store, rec *reconcile.Reconciler, coverCache *covers.Cache, hub *events.Hub) *Handler {
	return &Handler{client: client, store: store, reconciler: rec, covers: coverCache, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/books", h.createBook)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (h *Handler) search(c *gin.Context) {
	q := openlibrary.Query{
		Title:   strings.TrimSpace(c.Query("title")),
		Author:  strings.TrimSpace(c.Query("author")),
		General: strings.TrimSpace(c.Query("q")),
	}
	if yearRaw := c.Query("year"); yearRaw != "" {
		year, err := strconv.Atoi(yearRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
		q.Year = year
	}
	if q.Title == "" && q.Author == "" && q.General == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one of q, title, author is required"})
		return
	}

	page := intQuery(c, "page", 1)
	pageSize := intQuery(c, "page_size", defaultPageSize)
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	q.Limit = pageSize
	offset := (page - 1) * pageSize

	docs, numFound, err := h.client.Search(c.Request.Context(), q, offset)
	if err != nil {
		log.Printf("[search] openlibrary: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog lookup failed"})
		return
	}

	results := make([]gin.H, 0, len(docs))
	for _, doc := range docs {
		book := openlibrary.BuildRecord(doc)
		results = append(results, gin.H{
			"book": book,
			"doc":  doc,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"results":   results,
		"num_found": numFound,
		"page":      page,
		"page_size": pageSize,
	})
}

type createBookRequest struct {
	// Doc is the raw search document the client picked from /search.
	Doc           map[string]any `json:"doc" binding:"required"`
	AllowMultiple bool           `json:"allow_multiple"`
}

func (h *Handler) createBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book := openlibrary.BuildRecord(req.Doc)
	if book.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document has no title"})
		return
	}
	coverURL := openlibrary.ResolveCoverURL(req.Doc)

	// Backfill thin records from the other catalog sources. Reconciliation
	// failure is not fatal; the copy is stored with whatever the document had.
	if merged, err := h.reconciler.Reconcile(c.Request.Context(), req.Doc); err == nil {
		if book.Subjects == "" && len(merged.Subjects) > 0 {
			book.Subjects = strings.Join(merged.Subjects, ", ")
		}
		if book.Publisher == "" {
			book.Publisher = merged.Publisher
		}
		if book.ISBN == "" && len(merged.ISBNs) > 0 {
			book.ISBN = merged.ISBNs[0]
		}
		if coverURL == "" {
			coverURL = merged.CoverURL
		}
	} else {
		log.Printf("[search] reconcile %q: %v", book.Title, err)
	}
	book.CoverURL = coverURL

	if coverURL != "" {
		identifier := openlibrary.BestIdentifier(book, req.Doc)
		path, err := h.covers.Fetch(c.Request.Context(), coverURL, identifier)
		if err != nil {
			log.Printf("[search] cover fetch %q: %v", identifier, err)
		} else {
			book.CoverPath = path
		}
	}

	id, created, err := h.store.AddBook(c.Request.Context(), book, req.AllowMultiple)
	if err != nil {
		log.Printf("[search] add book: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store book"})
		return
	}
	if created {
		h.hub.Broadcast(events.BookCreated(id))
	}

	stored, err := h.store.GetBook(c.Request.Context(), id)
	if err != nil || stored == nil {
		c.JSON(http.StatusCreated, gin.H{"id": id, "created": created})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": id, "created": created, "book": stored})
}
