package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bookden/pkg/database"
)

func main() {
	var (
		booksOut      = flag.String("books", "data/books.csv", "output CSV path for books")
		placementsOut = flag.String("placements", "data/placements.csv", "output CSV path for shelf placements")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportBooks(ctx, db, *booksOut); err != nil {
		log.Fatalf("export books failed: %v", err)
	}
	if err := exportPlacements(ctx, db, *placementsOut); err != nil {
		log.Fatalf("export placements failed: %v", err)
	}

	log.Printf("exported books to %s and placements to %s", *booksOut, *placementsOut)
}

func exportBooks(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "title", "subtitle", "authors", "first_publish_year", "publisher", "isbn", "subjects", "openlibrary_key", "created_at"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT id, title, subtitle, authors, first_publish_year, publisher, isbn, subjects, openlibrary_key, created_at
        FROM books
        ORDER BY lower(title)
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id        int64
			title     string
			subtitle  sql.NullString
			authors   sql.NullString
			year      sql.NullInt64
			publisher sql.NullString
			isbn      sql.NullString
			subjects  sql.NullString
			olKey     sql.NullString
			createdAt sql.NullString
		)

		if err := rows.Scan(&id, &title, &subtitle, &authors, &year, &publisher, &isbn, &subjects, &olKey, &createdAt); err != nil {
			return err
		}

		published := ""
		if year.Valid {
			published = strconv.FormatInt(year.Int64, 10)
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			title,
			subtitle.String,
			authors.String,
			published,
			publisher.String,
			isbn.String,
			subjects.String,
			olKey.String,
			createdAt.String,
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func exportPlacements(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"book_id", "title", "shelf", "row", "row_position", "slot_index"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
        SELECT p.book_id, b.title, s.name, sr.name, sr.position, p.slot_index
        FROM placements p
        JOIN books b ON b.id = p.book_id
        JOIN shelf_rows sr ON sr.id = p.shelf_row_id
        JOIN shelves s ON s.id = sr.shelf_id
        ORDER BY s.name, sr.position, p.slot_index
    `)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookID   int64
			title    string
			shelf    string
			rowName  sql.NullString
			position int
			slot     int
		)

		if err := rows.Scan(&bookID, &title, &shelf, &rowName, &position, &slot); err != nil {
			return err
		}

		if err := w.Write([]string{
			strconv.FormatInt(bookID, 10),
			title,
			shelf,
			rowName.String,
			strconv.Itoa(position),
			strconv.Itoa(slot),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
