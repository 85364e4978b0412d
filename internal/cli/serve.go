package cli

import (
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MiniCatalog/internal/auth"
	"MiniCatalog/internal/catalog"
	"MiniCatalog/pkg/kit"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd)
		},
	}

	cmd.Flags().String("port", "", "HTTP port (overrides CATALOG_PORT).")
	_ = a.v.BindPFlag("port", cmd.Flags().Lookup("port"))

	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := a.cfg

	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, closeFn, err := a.openStore(ctx, catalog.NewMetrics(reg))
	if err != nil {
		return err
	}
	defer closeFn()

	// Startup load failures are reported but do not stop the server.
	if _, err := store.Load(ctx); err != nil {
		a.log.Error("initial load failed, serving current catalog", zap.Error(err))
	}

	operators := auth.NewStore()
	if cfg.OperatorPasswordHash == "" {
		a.log.Warn("operator_password_hash not set, mutating endpoints are unreachable")
	} else if err := operators.AddHash(cfg.OperatorName, []byte(cfg.OperatorPasswordHash), auth.RoleOperator); err != nil {
		return err
	}

	jwt := auth.NewTokenMaker(cfg.JWTSecret)
	authSrv := &auth.Server{
		Log:      a.log,
		Store:    operators,
		JWT:      jwt,
		TokenTTL: cfg.TokenTTL,
	}

	h := catalog.NewHandler(&catalog.Server{Store: store, Log: a.log}, catalog.HTTPDeps{
		Log:             a.log,
		Service:         service,
		Registry:        reg,
		MetricsEnabled:  cfg.MetricsEnabled,
		MetricsToken:    cfg.MetricsToken,
		Auth:            authSrv.Routes(),
		RequireOperator: auth.RequireOperator(jwt),
	})

	return kit.RunHTTPServer(ctx, net.JoinHostPort("", cfg.Port), h, a.log)
}
