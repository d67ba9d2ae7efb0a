package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/weegigs/coin-counter-go/api"
	"github.com/weegigs/coin-counter-go/coins"
	"github.com/weegigs/coin-counter-go/support"
)

const name = "coin-counter"

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	flags := support.Flags(name)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(flags); err != nil {
		log.Fatal().Err(err).Msg("coin counter failed")
	}
}

func run(flags *pflag.FlagSet) error {
	cfg, err := support.Load(flags)
	if err != nil {
		return err
	}

	logger, err := support.ConfigureLogging(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := support.ConfigureTelemetry(ctx, cfg.Telemetry, name, version)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	registry := support.Registry()
	counter, cleanup, err := newCounter(ctx, cfg, registry)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s store", cfg.Store)
	}
	defer cleanup()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler(cfg, counter, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("store", cfg.Store).
			Strs("api", cfg.API).
			Strs("denominations", cfg.Denominations).
			Msg("listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(ctx)
	})

	return g.Wait()
}

// newCounter opens the configured journal store and builds the counter on
// top of it.
func newCounter(ctx context.Context, cfg *support.Config, registry *prometheus.Registry) (*coins.Counter, func(), error) {
	switch cfg.Store {
	case support.StoreMemory:
		return memoryCounter(cfg, registry)
	case support.StoreDynamo:
		return dynamoCounter(ctx, cfg, registry)
	case support.StoreDynamoLocal:
		return dynamoLocalCounter(ctx, cfg, registry)
	case support.StoreJetStream:
		return jetstreamCounter(cfg, registry)
	case support.StoreESDB:
		return esdbCounter(cfg, registry)
	default:
		return nil, nil, errors.Errorf("unknown store %q", cfg.Store)
	}
}

func handler(cfg *support.Config, counter api.Counter, registry *prometheus.Registry) http.Handler {
	return withLogging(api.NewHandler(
		counter,
		api.Logger(&log.Logger),
		api.Origins(cfg.CORS.Origins...),
		api.Groups(cfg.API...),
		api.Gatherer(registry),
	))
}
