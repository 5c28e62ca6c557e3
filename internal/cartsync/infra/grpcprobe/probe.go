// Package grpcprobe checks backend reachability through the standard gRPC
// health service that cartd exposes next to its HTTP API.
package grpcprobe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const DefaultTimeout = 3 * time.Second

type Prober struct {
	conn    *grpc.ClientConn
	client  grpc_health_v1.HealthClient
	timeout time.Duration
	log     *slog.Logger
}

// Dial does not connect; the first Probe does.
func Dial(target string, timeout time.Duration, log *slog.Logger, opts ...grpc.DialOption) (*Prober, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", target, err)
	}

	return &Prober{
		conn:    conn,
		client:  grpc_health_v1.NewHealthClient(conn),
		timeout: timeout,
		log:     log,
	}, nil
}

// Probe is true only when the server as a whole reports SERVING.
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		p.log.Debug("health check failed", slog.String("err", err.Error()))
		return false
	}
	return resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING
}

func (p *Prober) Close() error {
	return p.conn.Close()
}
