package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/pkg/kit"
)

const service = "catalog"

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	fs         afero.Fs

	cfg *config.Config
	log *zap.Logger
}

// NewCommand builds the catalog CLI. fsys backs the file snapshot and the
// directory listing.
func NewCommand(fsys afero.Fs) *cobra.Command {
	a := &app{v: config.New(), fs: fsys}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "Maintain a small product catalog persisted to a snapshot file",
		Long: `catalog keeps an ordered list of product records in memory and persists the
whole list as one binary snapshot.

Usage examples:

1. Interactive menu against ./products.dat:

	catalog

2. HTTP API backed by Postgres:

	CATALOG_BACKEND=postgres CATALOG_DATABASE_URL=postgres://... catalog serve

3. List a directory:

	catalog ls /var/lib
`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.sync() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMenu(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Path to a YAML config file.")
	flags.String("data-file", config.DefaultDataFile, "Snapshot file used by the file backend.")
	flags.String("backend", config.BackendFile, "Snapshot backend: file or postgres.")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error.")
	flags.Bool("strict", false, "Reject duplicate ids, empty names and negative price/stock on add.")

	_ = a.v.BindPFlag("data_file", flags.Lookup("data-file"))
	_ = a.v.BindPFlag("backend", flags.Lookup("backend"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("strict", flags.Lookup("strict"))

	root.AddCommand(
		newMenuCommand(a),
		newServeCommand(a),
		newLsCommand(a),
		newHashPasswordCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}

	log, err := kit.NewLogger(service, cfg.LogLevel)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// openStore builds the configured backend and an empty store on top of it.
// The returned func releases backend resources.
func (a *app) openStore(ctx context.Context, metrics *catalog.Metrics) (*catalog.Store, func(), error) {
	backend, closeFn, err := a.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}

	store := catalog.NewStore(backend, catalog.StoreDeps{
		Log:     a.log,
		Metrics: metrics,
		Strict:  a.cfg.Strict,
	})
	return store, closeFn, nil
}

func (a *app) openBackend(ctx context.Context) (catalog.Backend, func(), error) {
	switch a.cfg.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		b := catalog.NewPostgresBackend(pool, a.cfg.SnapshotName)
		if err := b.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return b, pool.Close, nil
	default:
		return catalog.NewFileBackend(a.fs, a.cfg.DataFile), func() {}, nil
	}
}
