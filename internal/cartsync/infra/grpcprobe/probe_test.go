package grpcprobe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

func startHealth(t *testing.T) (*health.Server, *bufconn.Listener) {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	hs := health.NewServer()
	srv := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, hs)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return hs, lis
}

func dialBuf(t *testing.T, lis *bufconn.Listener) *Prober {
	t.Helper()

	p, err := Dial("passthrough:///bufnet", time.Second, nil,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProbeFollowsServingStatus(t *testing.T) {
	hs, lis := startHealth(t)
	p := dialBuf(t, lis)
	ctx := context.Background()

	assert.True(t, p.Probe(ctx))

	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	assert.False(t, p.Probe(ctx))

	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	assert.True(t, p.Probe(ctx))
}

func TestProbeServerGone(t *testing.T) {
	lis := bufconn.Listen(bufSize)
	require.NoError(t, lis.Close())

	p := dialBuf(t, lis)
	assert.False(t, p.Probe(context.Background()))
}
