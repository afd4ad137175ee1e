package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookden/internal/openlibrary"
	"bookden/pkg/models"
)

func newSearchCommand(ctx *cliContext) *cobra.Command {
	var author string
	var year int
	var limit int

	cmd := &cobra.Command{
		Use:   "search <title words...>",
		Short: "Search Open Library for a book",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := openlibrary.Query{
				Title:  strings.Join(args, " "),
				Author: author,
				Year:   year,
				Limit:  limit,
			}
			docs, numFound, err := ctx.olClient().Search(cmd.Context(), q, 0)
			if err != nil {
				return err
			}
			fmt.Printf("%d results (showing %d)\n\n", numFound, len(docs))
			for i, doc := range docs {
				b := openlibrary.BuildRecord(doc)
				fmt.Printf("%2d. %s", i+1, b.Title)
				if b.Authors != "" {
					fmt.Printf(" by %s", b.Authors)
				}
				if b.FirstPublishYear != 0 {
					fmt.Printf(" (%d)", b.FirstPublishYear)
				}
				fmt.Println()
				if b.OpenLibraryKey != "" {
					fmt.Printf("    key: %s\n", b.OpenLibraryKey)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", "", "Author name")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "First publication year")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results")
	return cmd
}

func newAddCommand(ctx *cliContext) *cobra.Command {
	var author string
	var allowMultiple bool
	var skipCover bool

	cmd := &cobra.Command{
		Use:   "add <title words...>",
		Short: "Look up the best match and add it to the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}

			q := openlibrary.Query{Title: strings.Join(args, " "), Author: author, Limit: 1}
			docs, _, err := ctx.olClient().Search(cmd.Context(), q, 0)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no match for %q", q.Title)
			}
			doc := docs[0]

			book := openlibrary.BuildRecord(doc)
			coverURL := openlibrary.ResolveCoverURL(doc)
			if merged, err := ctx.reconciler().Reconcile(cmd.Context(), doc); err == nil {
				if book.Subjects == "" && len(merged.Subjects) > 0 {
					book.Subjects = strings.Join(merged.Subjects, ", ")
				}
				if book.ISBN == "" && len(merged.ISBNs) > 0 {
					book.ISBN = merged.ISBNs[0]
				}
				if coverURL == "" {
					coverURL = merged.CoverURL
				}
			}
			book.CoverURL = coverURL

			if coverURL != "" && !skipCover {
				identifier := openlibrary.BestIdentifier(book, doc)
				if path, err := ctx.coverCache().Fetch(cmd.Context(), coverURL, identifier); err == nil {
					book.CoverPath = path
				}
			}

			id, created, err := store.AddBook(cmd.Context(), book, allowMultiple)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("added #%d: %s\n", id, book.Title)
			} else {
				fmt.Printf("already in catalog as #%d: %s\n", id, book.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&author, "author", "a", "", "Author name")
	cmd.Flags().BoolVar(&allowMultiple, "copy", false, "Add another copy even if already cataloged")
	cmd.Flags().BoolVar(&skipCover, "no-cover", false, "Skip downloading the cover image")
	return cmd
}

func newListCommand(ctx *cliContext) *cobra.Command {
	var search string
	var unplaced bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			var books []models.Book
			if unplaced {
				books, err = store.UnplacedBooks(cmd.Context())
			} else {
				books, err = store.ListBooks(cmd.Context(), search)
			}
			if err != nil {
				return err
			}
			if len(books) == 0 {
				fmt.Println("no books")
				return nil
			}
			for _, b := range books {
				line := fmt.Sprintf("#%d %s", b.ID, b.Title)
				if b.Authors != "" {
					line += " by " + b.Authors
				}
				if b.Placement != nil {
					line += " [" + b.Placement.ShelfName + " / " + b.Placement.RowName +
						" / slot " + strconv.Itoa(b.Placement.SlotIndex) + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by title, author, publisher or ISBN")
	cmd.Flags().BoolVar(&unplaced, "unplaced", false, "Only books without a shelf slot")
	return cmd
}
