// pqexec: PQC operation executor. Listens on a unix/tcp socket or QUIC, answers
// keypair/encap/decap requests, optionally journals them to sqlite.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"dev.c0redev.pqmsg/internal/config"
	"dev.c0redev.pqmsg/internal/crypto"
	"dev.c0redev.pqmsg/internal/executor"
	"dev.c0redev.pqmsg/internal/logging"
	"dev.c0redev.pqmsg/internal/status"
	"dev.c0redev.pqmsg/internal/store"
	"dev.c0redev.pqmsg/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pqexec: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, logLevel string
	var retention time.Duration
	flags := pflag.NewFlagSet("pqexec", pflag.ContinueOnError)
	flags.StringVarP(&configPath, "config", "c", "", "TOML config file (env PQMSG_* overrides it)")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	flags.DurationVar(&retention, "journal-retention", 0, "prune journal entries older than this at startup (0 = keep all)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger := logging.New("pqexec", cfg.LogLevel)

	opts := executor.Options{Logger: &logger, MaxPayload: cfg.MaxPayload}
	var db *store.DB
	if cfg.Journal != "" {
		db, err = store.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
		defer db.Close()
		if retention > 0 {
			n, err := db.Prune(time.Now().Add(-retention))
			if err != nil {
				return fmt.Errorf("journal prune: %w", err)
			}
			logger.Info().Int64("removed", n).Msg("journal pruned")
		}
		defer logJournal(logger, db)
		opts.Journal = db
	}

	var tlsConfig *tls.Config
	if cfg.TLSCert != "" {
		if tlsConfig, err = transport.LoadServerTLS(cfg.TLSCert, cfg.TLSKey); err != nil {
			return err
		}
	}
	ln, err := transport.Listen(cfg.Network, cfg.Addr, tlsConfig)
	if err != nil {
		return err
	}
	defer ln.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.StatusAddr != "" {
		srv := &http.Server{Addr: cfg.StatusAddr, Handler: statusHandler(logger, status.New(db, cfg.StatusTokenHash))}
		go func() {
			logger.Info().Str("addr", cfg.StatusAddr).Msg("status listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("status server")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("status shutdown")
			}
		}()
	}

	supported := crypto.Supported()
	names := make([]string, len(supported))
	for i, alg := range supported {
		names[i] = alg.String()
	}
	logger.Info().
		Str("network", cfg.Network).
		Str("addr", ln.Addr().String()).
		Strs("algorithms", names).
		Msg("executor listening")

	if err := executor.New(opts).Serve(ctx, ln); err != nil {
		return err
	}
	logger.Info().Msg("executor stopped")
	return nil
}

func logJournal(logger zerolog.Logger, db *store.DB) {
	counts, err := db.CountByAlgorithm()
	if err != nil {
		logger.Warn().Err(err).Msg("journal summary")
		return
	}
	for _, c := range counts {
		logger.Info().
			Stringer("alg", c.Algorithm).
			Int("total", c.Total).
			Int("failed", c.Failed).
			Msg("journal summary")
	}
}

func statusHandler(logger zerolog.Logger, srv *status.Server) http.Handler {
	mux := http.NewServeMux()
	srv.Mount(mux)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		mux.ServeHTTP(sw, r)
		if sw.code >= 400 {
			logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("code", sw.code).Msg("status request")
		}
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
