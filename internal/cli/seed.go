package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/seed"
	"github.com/fairyhunter13/inventory-register-service/internal/store/sqlstore"
)

// SeedResult reports what a seed run changed.
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// NewSeedCommand creates the seed command. Without a file argument the
// built-in sample catalog is loaded.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "seed [file]",
		Short:        "Load a YAML catalog into a SQL store",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.cfg
			if cfg.StoreDriver != sqlstore.DriverSQLite && cfg.StoreDriver != sqlstore.DriverPostgres {
				return fmt.Errorf("seed needs a sql store driver, got %q", cfg.StoreDriver)
			}
			products := seed.Default()
			if len(args) == 1 {
				ps, err := loadSeedFile(args[0])
				if err != nil {
					return err
				}
				products = ps
			}
			res, err := runSeed(cmd, cfg.StoreDriver, cfg.StoreDSN, products)
			if err != nil {
				return err
			}
			if rootOpts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products (%d skipped)\n", res.Created, res.Skipped)
			return err
		},
	}
}

func runSeed(cmd *cobra.Command, driver, dsn string, products []model.Product) (SeedResult, error) {
	st, err := openSQL(cmd.Context(), driver, dsn)
	if err != nil {
		return SeedResult{}, err
	}
	defer st.Close()
	n, err := seed.Apply(cmd.Context(), st, products)
	if err != nil {
		return SeedResult{}, err
	}
	return SeedResult{Created: n, Skipped: len(products) - n}, nil
}
