package httpgateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
)

func newGateway(t *testing.T, url string, mutation time.Duration) *Gateway {
	t.Helper()
	g, err := New(Config{BaseURL: url, MutationTimeout: mutation, ProbeTimeout: 200 * time.Millisecond}, nil)
	require.NoError(t, err)
	return g
}

func requireKind(t *testing.T, err error, want domain.Kind) *domain.SyncError {
	t.Helper()
	require.Error(t, err)
	var se *domain.SyncError
	require.True(t, errors.As(err, &se), "want *SyncError, got %T", err)
	assert.Equal(t, want, se.Kind, se.Error())
	return se
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, nil)
	require.Error(t, err)
}

func TestFetchCartDecodesItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cart/", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"product_id":1,"quantity":2,"product":{"id":1,"name":"Smoked salmon","price":250}}]`))
	}))
	defer ts.Close()

	items, err := newGateway(t, ts.URL, time.Second).FetchCart(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID)
	assert.Equal(t, 500.0, items[0].LineTotal())
}

func TestFetchCartMalformed(t *testing.T) {
	for name, body := range map[string]string{
		"object":    `{"items":[]}`,
		"null":      `null`,
		"empty":     ``,
		"truncated": `[{"id":1`,
	} {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer ts.Close()

			_, err := newGateway(t, ts.URL, time.Second).FetchCart(context.Background())
			requireKind(t, err, domain.KindMalformedResponse)
		})
	}
}

func TestRejectionUsesDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"quantity cannot exceed 99"}`, "quantity cannot exceed 99"},
		{"list detail", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"},{"msg":"bad id"}]}`, "field required; bad id"},
		{"no detail", http.StatusInternalServerError, `oops`, "server returned 500 Internal Server Error"},
		{"empty detail", http.StatusNotFound, `{"detail":""}`, "server returned 404 Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			err := newGateway(t, ts.URL, time.Second).SetQuantity(context.Background(), 1, 5)
			se := requireKind(t, err, domain.KindServerRejected)
			assert.Equal(t, tt.status, se.Status)
			assert.Equal(t, tt.want, domain.MessageOf(err))
		})
	}
}

func TestSetQuantityRequestShape(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/cart/12", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("quantity"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	require.NoError(t, newGateway(t, ts.URL, time.Second).SetQuantity(context.Background(), 12, 42))
}

func TestUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	g := newGateway(t, url, time.Second)
	_, err := g.FetchCart(context.Background())
	requireKind(t, err, domain.KindUnreachable)
	assert.False(t, g.Probe(context.Background()))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	err := newGateway(t, ts.URL, 30*time.Millisecond).RemoveItem(context.Background(), 3)
	requireKind(t, err, domain.KindTimeout)
}

func TestProbe(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	defer ts.Close()

	g := newGateway(t, ts.URL, time.Second)
	assert.True(t, g.Probe(context.Background()))

	status.Store(http.StatusNotFound)
	assert.True(t, g.Probe(context.Background()), "any answer below 500 means reachable")

	status.Store(http.StatusServiceUnavailable)
	assert.False(t, g.Probe(context.Background()))
}
