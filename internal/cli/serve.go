package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/inventory-register-service/internal/activity"
	httpapi "github.com/fairyhunter13/inventory-register-service/internal/http"
	"github.com/fairyhunter13/inventory-register-service/internal/invoice"
	"github.com/fairyhunter13/inventory-register-service/internal/obs"
	"github.com/fairyhunter13/inventory-register-service/internal/queue"
	"github.com/fairyhunter13/inventory-register-service/internal/register"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				rootOpts.cfg.HTTPAddr = addr
			}
			return runServe(cmd.Context(), rootOpts)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func runServe(parent context.Context, opts *RootOptions) error {
	cfg := opts.cfg
	obs.Logger.Info("service_starting", "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	var feed activity.Feed
	if cfg.RedisAddr != "" {
		rf, err := activity.NewRedisFeed(ctx, cfg.RedisAddr, cfg.ActivityFeedKey, cfg.ActivityFeedMax)
		if err != nil {
			return err
		}
		defer rf.Close()
		feed = rf
		obs.Logger.Info("activity_feed_enabled", "addr", cfg.RedisAddr, "key", cfg.ActivityFeedKey)
	}
	rec := activity.NewRecorder(activity.NewLog(), activity.NewInbox(), feed, cfg.CurrencySymbol)

	mgr := queue.NewManager(cfg, queue.New(128), rec)
	mgrCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(mgrCtx)

	svc := register.NewService(catalog, invoice.NewLedger(), mgr, cfg.Actor)
	app := httpapi.NewApp(cfg, svc, mgr, rec)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		obs.Logger.Info("shutdown_signal")
	case serveErr = <-errc:
		obs.Logger.Error("http_server_error", "error", serveErr)
	}

	app.StartShutdown()
	st := mgr.Stats()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", st.Backlog, "worker_count", mgr.WorkerCount())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}
	mgr.Stop()
	obs.Logger.Info("service_stopped")
	return serveErr
}
