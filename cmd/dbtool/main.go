package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pitstop-service/internal/adapters/repositories"
	"pitstop-service/internal/config"
)

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Prepare the restroom store and load the fixed seed list",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			cfg = c
			return config.InitLogger(c.Log)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations (sql drivers) or create the index (elastic)",
		RunE: func(cmd *cobra.Command, args []string) error {
			storeCfg := cfg.Store
			storeCfg.AutoMigrate = true

			store, err := repositories.Open(cmd.Context(), storeCfg)
			if err != nil {
				return eris.Wrap(err, "migrate")
			}
			defer store.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", storeCfg.Driver)
			return nil
		},
	}

	var seedFile string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Insert the places listed in a JSON seed file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedFile == "" {
				seedFile = cfg.Ingest.SeedFile
			}

			store, err := repositories.Open(cmd.Context(), cfg.Store)
			if err != nil {
				return eris.Wrap(err, "seed")
			}
			defer store.Close()

			n, err := repositories.SeedFromJSON(cmd.Context(), store, seedFile)
			if err != nil {
				return eris.Wrap(err, "seed")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d restrooms from %s\n", n, seedFile)
			return nil
		},
	}
	seed.Flags().StringVar(&seedFile, "file", "", "seed file (default from config ingest.seed_file)")

	root.AddCommand(migrate, seed)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
