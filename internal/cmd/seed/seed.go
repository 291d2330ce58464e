// Package seed parses seed command flags and applies a route-profile
// catalog to a local database.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder/service"
	"github.com/louisbranch/showbinder/internal/platform/cmd"
	catalog "github.com/louisbranch/showbinder/internal/seed"
	"github.com/louisbranch/showbinder/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string `env:"SHOWBINDER_DB_PATH" envDefault:"showbinder.db"`
	CatalogPath string `env:"SHOWBINDER_SEED_CATALOG"`
	Actor       string `env:"SHOWBINDER_ACTOR" envDefault:"seed"`
}

// ParseConfig parses environment and flags into a Config. Flags win over
// env values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.DBPath, "db", "showbinder.db", "Path to the binder database file")
	fs.StringVar(&cfg.CatalogPath, "catalog", "", "Catalog YAML file (default: built-in demo catalog)")
	fs.StringVar(&cfg.Actor, "actor", "seed", "Actor name recorded on seeded records")
	if err := cmd.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the catalog and applies it through the binder service.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return cmd.RunWithTelemetry(ctx, cmd.ServiceSeed, func(ctx context.Context) error {
		loaded, err := loadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}

		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		svc := service.New(store, audit.NewEmitter(store))
		result, err := catalog.Apply(ctx, svc, cfg.Actor, loaded)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d profile(s) and %d binder(s)\n", result.Profiles, result.Binders)
		return nil
	})
}

func loadCatalog(path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.DefaultCatalog()
	}
	return catalog.LoadFile(path)
}
