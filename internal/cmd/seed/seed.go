// Package seed parses seed command flags and loads demo chat data.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	entrypoint "github.com/torcida/fanhub/internal/platform/cmd"
	"github.com/torcida/fanhub/internal/storage"
	"github.com/torcida/fanhub/internal/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"FANHUB_DB_PATH" envDefault:"fanhub.db"`
	List   bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.BoolVar(&cfg.List, "list", false, "list the demo principals without writing")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// demoPrincipals are the fixtures loaded into a development database. The
// writes are upserts, so re-running the command converges on the same state.
func demoPrincipals() []storage.Principal {
	return []storage.Principal{
		{ID: 1, DisplayName: "Furiosa", IsAdmin: true, Points: 120, Badges: []string{"Rede Social Vinculada", "Foto do Perfil"}},
		{ID: 2, DisplayName: "PanteraNegra", Points: 35, Badges: []string{"Link de E-sports"}},
		{ID: 3, DisplayName: "TorcedorNovo"},
	}
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	principals := demoPrincipals()
	if cfg.List {
		for _, principal := range principals {
			fmt.Fprintf(out, "%d\t%s\n", principal.ID, principal.DisplayName)
		}
		return nil
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	for _, principal := range principals {
		if err := store.PutPrincipal(ctx, principal); err != nil {
			return fmt.Errorf("seed principal %d: %w", principal.ID, err)
		}
		fmt.Fprintf(out, "seeded %s\n", principal.DisplayName)
	}
	return nil
}
