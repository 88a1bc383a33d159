// cmd/relayservice/run.go
package relayservice

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cargaplay/whatsapp-relay/internal/adapter/automator"
	"github.com/cargaplay/whatsapp-relay/internal/adapter/whatsapp"
	"github.com/cargaplay/whatsapp-relay/internal/adapter/woocommerce"
	"github.com/cargaplay/whatsapp-relay/internal/app/orderwebhook"
	"github.com/cargaplay/whatsapp-relay/internal/app/reminders"
	"github.com/cargaplay/whatsapp-relay/internal/ports"
	"github.com/cargaplay/whatsapp-relay/internal/shared/config"
	"github.com/cargaplay/whatsapp-relay/internal/shared/httpx"
	"github.com/cargaplay/whatsapp-relay/internal/shared/logger"
)

// LivenessText is served on GET /.
const LivenessText = "Servidor WhatsApp relay está no ar!"

// responseMargin covers decoding, routing and writing around the outbound calls.
const responseMargin = 5 * time.Second

// Run wires the relay and blocks until ctx is cancelled.
// A positive port overrides PORT. It returns the first terminal error.
func Run(ctx context.Context, port int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	// set up a new logger for the relay
	logger := logger.New("whatsapp-relay", cfg.LogLevel)
	defer logger.Sync()

	// set up outbound clients
	sender := whatsapp.New(cfg.WhatsApp, logger)
	fetcher := woocommerce.New(cfg.WooCommerce, logger)
	notifier := automator.New(cfg.Automator, logger)

	if !sender.Configured() {
		logger.Warn(ctx, "whatsapp_not_configured", "WhatsApp credentials missing; messages will be skipped",
			map[string]any{"missing": cfg.WhatsApp.Missing()})
	}
	if !fetcher.Configured() {
		logger.Warn(ctx, "woocommerce_not_configured", "WooCommerce credentials missing; order webhooks will fail",
			map[string]any{"missing": cfg.WooCommerce.Missing()})
	}

	pipeline := orderwebhook.NewPipeline(fetcher, sender, notifier, logger, cfg.Order.SettleDelay)
	router := NewRouter(logger, pipeline, sender, cfg.Reminders)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logger.Info(ctx, "service_started",
		fmt.Sprintf("WhatsApp relay started on port %d", cfg.Server.Port),
		map[string]any{
			"port":         cfg.Server.Port,
			"settle_delay": cfg.Order.SettleDelay.String(),
			"reminders":    len(cfg.Reminders),
			"email_hook":   notifier.Configured(),
		},
	)

	// ---- Serve + graceful shutdown -------------------------------------------
	errCh := make(chan error, 1)
	go func() {
		// http.ErrServerClosed is returned on Shutdown; treat that as clean exit.
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		// let waiting orders proceed before draining connections
		pipeline.Drain()

		shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			logger.Error(shCtx, "graceful_shutdown_failed", "Server did not drain in time", err)
			return err
		}
		logger.Info(shCtx, "graceful_shutdown", "WhatsApp relay stopped", nil)
		return nil
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "server_failed", "HTTP server terminated", err)
		}
		return err
	}
}

// writeTimeout bounds the slowest order webhook: settle delay, then the order fetch, then
// both notifications running side by side.
func writeTimeout(cfg *config.Config) time.Duration {
	notify := max(cfg.WhatsApp.Timeout, cfg.Automator.Timeout)
	return cfg.Order.SettleDelay + cfg.WooCommerce.Timeout + notify + responseMargin
}

// NewRouter mounts liveness, order and reminder routes behind the shared middleware.
func NewRouter(logger *logger.Logger, pipeline *orderwebhook.Pipeline, sender ports.TemplateSender,
	reminderRoutes []config.ReminderRoute) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestID(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteText(w, http.StatusOK, LivenessText)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteText(w, http.StatusOK, "ok")
	})

	orderwebhook.NewHandler(pipeline, sender, logger).Register(r)
	reminders.NewHandler(reminderRoutes, sender, logger).Register(r)

	return r
}
