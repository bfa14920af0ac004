package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Lixing-Zhang/qr-menu/internal/config"
	"github.com/Lixing-Zhang/qr-menu/internal/repository"
	"github.com/Lixing-Zhang/qr-menu/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once the root has run
type app struct {
	envFile string
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "menuctl",
		Short:         "Inspect the QR menu and send visit pings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(newBlocksCmd(a))
	root.AddCommand(newPingCmd(a))

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so command output stays machine readable.
	a.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, "text")
	return nil
}

func (a *app) catalog() (repository.CatalogRepository, error) {
	if a.cfg.Catalog.Source == "memory" {
		return repository.NewDemoCatalogRepository(), nil
	}
	httpCatalog, err := repository.NewHTTPCatalogRepository(a.cfg.CatalogURL(), a.cfg.Catalog.ClientID, a.cfg.Catalog.Timeout)
	if err != nil {
		return nil, err
	}
	return httpCatalog, nil
}
