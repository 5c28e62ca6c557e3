package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dwikikusuma/cart-sync/internal/server"
	"github.com/dwikikusuma/cart-sync/pkg/config"
	"github.com/dwikikusuma/cart-sync/pkg/database"
	"github.com/dwikikusuma/cart-sync/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "cartd", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	db, err := database.Open(database.Config{Path: cfg.DBPath, Verbose: cfg.LogLevel == "debug"})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}

	srv, err := server.New(context.Background(), db, server.Options{
		MaxQuantity: cfg.MaxQuantity,
		SeedDemo:    cfg.SeedDemo,
	}, log)
	if err != nil {
		log.Error("server setup failed", slog.Any("err", err))
		os.Exit(1)
	}

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("listen failed", slog.Any("err", err), slog.String("addr", grpcAddr))
		os.Exit(1)
	}

	// Clients probe reachability over the standard health service.
	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		log.Info("http starting", slog.String("addr", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	wait := gfshutdown.GracefulShutdown(gctx, shutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			srv.SetReady(false)
			healthSrv.Shutdown()
			if err := httpServer.Shutdown(ctx); err != nil {
				return err
			}
			return database.Close(db)
		},
		"grpc": func(ctx context.Context) error {
			stopped := make(chan struct{})
			go func() {
				grpcServer.GracefulStop()
				close(stopped)
			}()
			select {
			case <-stopped:
				return nil
			case <-ctx.Done():
				log.Warn("graceful stop timeout, forcing stop")
				grpcServer.Stop()
				return ctx.Err()
			}
		},
	})

	code := <-wait
	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		if code == 0 {
			code = 1
		}
	}
	log.Info("bye", slog.Int("code", code))
	os.Exit(code)
}
