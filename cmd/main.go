package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/rateio-sync-backend/internal/app"
	"github.com/yungbote/rateio-sync-backend/internal/data/db"
	"github.com/yungbote/rateio-sync-backend/internal/platform/envutil"
	"github.com/yungbote/rateio-sync-backend/internal/platform/logger"
)

func main() {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := newRootCommand(log).Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCommand(log *logger.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "rateio-sync",
		Short:         "Reconciles the Claro line spreadsheet with the hub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(log), newMigrateCommand(log))
	return root
}

func newServeCommand(log *logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the rateio-claro-sync function over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(log)
			if err != nil {
				return err
			}
			a, err := app.New(context.Background(), log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run()
		},
	}
}

func newMigrateCommand(log *logger.Logger) *cobra.Command {
	var shared bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the sync tables and the apply function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(log)
			if err != nil {
				return err
			}
			pg, err := db.NewPostgresService(log, cfg.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := db.AutoMigrateSync(pg.DB(), shared || cfg.MigrateShared); err != nil {
				return err
			}
			log.Info("migration complete", "shared_tables", shared || cfg.MigrateShared)
			return nil
		},
	}
	cmd.Flags().BoolVar(&shared, "shared", false, "also create the hub and profile tables (local development)")
	return cmd
}
