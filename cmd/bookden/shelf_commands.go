package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShelvesCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shelves",
		Short: "Show shelves, rows and placed books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			structure, err := store.ShelfStructure(cmd.Context())
			if err != nil {
				return err
			}
			if len(structure) == 0 {
				fmt.Println("no shelves")
				return nil
			}
			for _, shelf := range structure {
				fmt.Printf("%s (#%d)\n", shelf.Shelf.Name, shelf.Shelf.ID)
				for _, row := range shelf.Rows {
					name := row.Row.Name
					if name == "" {
						name = "Row " + strconv.Itoa(row.Row.Position)
					}
					fmt.Printf("  %s (#%d) %d/%d\n", name, row.Row.ID, row.Row.Used, row.Row.Capacity)
					for _, p := range row.Placements {
						fmt.Printf("    %2d. #%d %s\n", p.SlotIndex, p.BookID, p.Title)
					}
				}
			}
			return nil
		},
	}
}

func newShelfCommand(ctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelf",
		Short: "Manage shelves",
	}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			id, err := store.CreateShelf(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Printf("created shelf #%d: %s\n", id, args[0])
			return nil
		},
	}
	create.Flags().StringVarP(&description, "description", "d", "", "Shelf description")

	del := &cobra.Command{
		Use:   "delete <shelf-id>",
		Short: "Delete an empty shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid shelf id %q", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.DeleteShelf(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("deleted shelf #%d\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, del)
	return cmd
}

func newRowCommand(ctx *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "row",
		Short: "Manage shelf rows",
	}

	var name string
	var capacity int
	add := &cobra.Command{
		Use:   "add <shelf-id>",
		Short: "Append a row to a shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shelfID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid shelf id %q", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			rowID, err := store.CreateRow(cmd.Context(), shelfID, name, capacity)
			if err != nil {
				return err
			}
			fmt.Printf("created row #%d on shelf #%d\n", rowID, shelfID)
			return nil
		},
	}
	add.Flags().StringVarP(&name, "name", "n", "", "Row label")
	add.Flags().IntVarP(&capacity, "capacity", "c", 0, "Slot capacity")

	del := &cobra.Command{
		Use:   "delete <row-id>",
		Short: "Delete an empty row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rowID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid row id %q", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.DeleteRow(cmd.Context(), rowID); err != nil {
				return err
			}
			fmt.Printf("deleted row #%d\n", rowID)
			return nil
		},
	}

	cmd.AddCommand(add, del)
	return cmd
}

func newPlaceCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "place <book-id> <row-id> <slot>",
		Short: "Put a book into a shelf slot",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			rowID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid row id %q", args[1])
			}
			slot, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid slot %q", args[2])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.Place(cmd.Context(), bookID, rowID, slot); err != nil {
				return err
			}
			fmt.Printf("placed book #%d in row #%d slot %d\n", bookID, rowID, slot)
			return nil
		},
	}
}

func newUnplaceCommand(ctx *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unplace <book-id>",
		Short: "Take a book off its shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.RemovePlacement(cmd.Context(), bookID); err != nil {
				return err
			}
			fmt.Printf("removed book #%d from its shelf\n", bookID)
			return nil
		},
	}
}
