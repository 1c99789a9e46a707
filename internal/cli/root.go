// Package cli wires the service into the inventory-register-service command.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/inventory-register-service/internal/config"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Format  string // "json" | "text"
	Driver  string
	DSN     string

	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inventory-register-service",
		Short: "Inventory dashboard back office",
		Long:  "Catalog listing, point-of-sale register, invoices and stock alerts behind a JSON API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			loaded, err := config.LoadDotEnv(opts.EnvFile)
			if err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
			opts.cfg = config.Load()
			if opts.Driver != "" {
				opts.cfg.StoreDriver = opts.Driver
			}
			if opts.DSN != "" {
				opts.cfg.StoreDSN = opts.DSN
			}
			obs.InitLoggerTo(cmd.ErrOrStderr(), opts.cfg.LogLevel)
			if loaded {
				obs.Logger.Debug("env_file_loaded", "path", opts.EnvFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "catalog store driver (memory|sqlite|postgres), overrides STORE_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "catalog store DSN, overrides STORE_DSN")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
