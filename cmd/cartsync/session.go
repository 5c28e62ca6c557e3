package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dwikikusuma/cart-sync/internal/cartsync/app"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/connectivity"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/infra/grpcprobe"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/infra/httpgateway"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/infra/localstore"
	"github.com/dwikikusuma/cart-sync/pkg/config"
	"github.com/dwikikusuma/cart-sync/pkg/logger"
)

// session is one engine plus the resources it was built from.
type session struct {
	engine  *app.Engine
	log     *slog.Logger
	closers []func() error
}

func openSession(cmd *cobra.Command, hooks app.Hooks) (*session, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Options{
		Service: "cartsync",
		Env:     cfg.AppEnv,
		Level:   level,
		Writer:  cmd.ErrOrStderr(),
	})

	s := &session{log: log}

	gw, err := httpgateway.New(httpgateway.Config{
		BaseURL:         cfg.Client.APIURL,
		MutationTimeout: cfg.Client.MutationTimeout,
		ProbeTimeout:    cfg.Client.ProbeTimeout,
	}, logger.Component(log, "gateway"))
	if err != nil {
		return nil, err
	}

	store, err := s.openStore(cfg, log)
	if err != nil {
		s.close()
		return nil, err
	}

	prober, err := s.openProber(cfg, log)
	if err != nil {
		s.close()
		return nil, err
	}

	s.engine = app.New(gw, store, prober, app.Config{
		MaxQuantity:          cfg.MaxQuantity,
		DebounceWindow:       cfg.Client.DebounceWindow,
		ProbeInterval:        cfg.Client.ProbeInterval,
		OfflineProbeInterval: cfg.Client.OfflineProbeInterval,
		LoadRetries:          cfg.Client.LoadRetries,
		LoadBackoff:          cfg.Client.LoadBackoff,
	}, hooks, logger.Component(log, "engine"))

	return s, nil
}

func (s *session) openStore(cfg config.Config, log *slog.Logger) (app.LocalStore, error) {
	storeLog := logger.Component(log, "localstore")

	switch cfg.Client.LocalStore {
	case "file", "":
		dir := filepath.Join(cfg.Client.LocalStoreDir, cfg.Client.SessionID)
		return localstore.NewFileStore(afero.NewOsFs(), dir, cfg.MaxQuantity, storeLog), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Client.RedisAddr})
		s.closers = append(s.closers, client.Close)
		prefix := fmt.Sprintf("cartsync:%s:", cfg.Client.SessionID)
		return localstore.NewRedisStore(client, prefix, cfg.MaxQuantity, storeLog), nil
	default:
		return nil, fmt.Errorf("unknown local store %q (want file or redis)", cfg.Client.LocalStore)
	}
}

// openProber returns nil for http, which makes the engine probe through the
// gateway.
func (s *session) openProber(cfg config.Config, log *slog.Logger) (connectivity.Prober, error) {
	switch cfg.Client.ProbeMode {
	case "http", "":
		return nil, nil
	case "grpc":
		p, err := grpcprobe.Dial(cfg.Client.GRPCAddr, cfg.Client.ProbeTimeout, logger.Component(log, "grpcprobe"))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, p.Close)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown probe mode %q (want http or grpc)", cfg.Client.ProbeMode)
	}
}

// start loads the cart; it never fails, problems show up as advisories.
// A one-shot command would exit before the first offline probe, so an
// offline start checks once up front.
func (s *session) start(ctx context.Context) {
	s.engine.Start(ctx)
	if !s.engine.Recheck(ctx) {
		s.log.Info("backend unreachable, working offline")
	}
}

// close flushes pending writes before tearing the engine down.
func (s *session) close() error {
	if s.engine != nil {
		s.engine.Flush()
		s.engine.Close()
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
