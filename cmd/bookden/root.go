package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"bookden/internal/covers"
	"bookden/internal/inventory"
	"bookden/internal/openlibrary"
	"bookden/internal/reconcile"
	"bookden/internal/sources"
	"bookden/pkg/database"
	"bookden/pkg/utils"
)

// cliContext opens shared resources lazily so commands that never touch the
// database (search) do not create one.
type cliContext struct {
	cfg utils.Config

	db    *sql.DB
	store *inventory.Store
}

func (c *cliContext) ensureStore() (*inventory.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	dbCfg := database.Config{Path: c.cfg.DBPath}
	if err := database.EnsureDataDir(dbCfg); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	c.db = db
	c.store = inventory.NewStore(db)
	return c.store, nil
}

func (c *cliContext) reconciler() *reconcile.Reconciler {
	timeout := c.cfg.AdapterHTTPTimeout()
	return reconcile.NewReconciler(
		reconcile.NewCache(c.cfg.CacheCapacity),
		sources.NewLibraryOfCongress(timeout),
		sources.NewInternetArchive(timeout),
		sources.NewGoogleBooks(timeout),
	)
}

func (c *cliContext) coverCache() *covers.Cache {
	return covers.New(c.cfg.CoverDir)
}

func (c *cliContext) olClient() *openlibrary.Client {
	return openlibrary.NewClient()
}

func (c *cliContext) close() {
	if c.db != nil {
		c.db.Close()
	}
}

func newRootCommand() *cobra.Command {
	ctx := &cliContext{}

	rootCmd := &cobra.Command{
		Use:           "bookden",
		Short:         "Manage the local book catalog and shelf placements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := utils.Load()
			if err != nil {
				return err
			}
			ctx.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newAddCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newShelvesCommand(ctx))
	rootCmd.AddCommand(newShelfCommand(ctx))
	rootCmd.AddCommand(newRowCommand(ctx))
	rootCmd.AddCommand(newPlaceCommand(ctx))
	rootCmd.AddCommand(newUnplaceCommand(ctx))

	return rootCmd
}
