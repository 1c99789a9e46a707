package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fairyhunter13/inventory-register-service/internal/config"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
	"github.com/fairyhunter13/inventory-register-service/internal/seed"
	"github.com/fairyhunter13/inventory-register-service/internal/store"
	"github.com/fairyhunter13/inventory-register-service/internal/store/sqlstore"
)

const (
	driverMemory     = "memory"
	defaultSQLiteDSN = "inventory.db"
)

// openCatalog opens the configured store and seeds it: from SEED_FILE when
// set, otherwise with the built-in catalog for the memory driver.
func openCatalog(ctx context.Context, cfg config.Config) (store.Catalog, error) {
	var catalog store.Catalog
	switch cfg.StoreDriver {
	case "", driverMemory:
		catalog = store.New()
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		st, err := openSQL(ctx, cfg.StoreDriver, cfg.StoreDSN)
		if err != nil {
			return nil, err
		}
		catalog = st
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	var products []model.Product
	switch {
	case cfg.SeedFile != "":
		ps, err := loadSeedFile(cfg.SeedFile)
		if err != nil {
			_ = catalog.Close()
			return nil, err
		}
		products = ps
	case cfg.StoreDriver == "" || cfg.StoreDriver == driverMemory:
		products = seed.Default()
	}
	if len(products) > 0 {
		n, err := seed.Apply(ctx, catalog, products)
		if err != nil {
			_ = catalog.Close()
			return nil, err
		}
		obs.Logger.Info("catalog_seeded", "created", n, "skipped", len(products)-n)
	}
	return catalog, nil
}

func openSQL(ctx context.Context, driver, dsn string) (*sqlstore.Store, error) {
	if dsn == "" {
		if driver != sqlstore.DriverSQLite {
			return nil, fmt.Errorf("store driver %s requires a DSN", driver)
		}
		dsn = defaultSQLiteDSN
	}
	return sqlstore.Open(ctx, driver, dsn)
}

func loadSeedFile(path string) ([]model.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	products, err := seed.Load(f)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return products, nil
}
