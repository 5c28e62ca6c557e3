// Package httpgateway talks to the cart REST API. It never touches local
// state; every failure comes back as a *domain.SyncError.
package httpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	cartdomain "github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/internal/cartsync/domain"
	orderdomain "github.com/dwikikusuma/cart-sync/internal/order/domain"
)

const (
	DefaultMutationTimeout = 8 * time.Second
	DefaultProbeTimeout    = 3 * time.Second

	maxBodyBytes = 1 << 20
)

type Config struct {
	BaseURL         string
	MutationTimeout time.Duration
	ProbeTimeout    time.Duration
	// HTTPClient defaults to a client without its own timeout; deadlines
	// come from the per-call context.
	HTTPClient *http.Client
}

type Gateway struct {
	base   string
	cfg    Config
	client *http.Client
	log    *slog.Logger
}

func New(cfg Config, log *slog.Logger) (*Gateway, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", cfg.BaseURL)
	}
	if cfg.MutationTimeout <= 0 {
		cfg.MutationTimeout = DefaultMutationTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Gateway{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		cfg:    cfg,
		client: client,
		log:    log,
	}, nil
}

func (g *Gateway) FetchCart(ctx context.Context) ([]cartdomain.CartItem, error) {
	const op = "fetch cart"

	body, err := g.do(ctx, op, http.MethodGet, "/cart/", nil)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &domain.SyncError{Kind: domain.KindMalformedResponse, Op: op, Message: "cart response is not a list"}
	}

	var items []cartdomain.CartItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, &domain.SyncError{Kind: domain.KindMalformedResponse, Op: op, Message: "cart response could not be decoded", Err: err}
	}
	return items, nil
}

func (g *Gateway) AddItem(ctx context.Context, productID int64, qty int) (cartdomain.CartItem, error) {
	const op = "add item"

	payload, err := json.Marshal(cartdomain.AddItemRequest{ProductID: productID, Quantity: qty})
	if err != nil {
		return cartdomain.CartItem{}, &domain.SyncError{Kind: domain.KindValidationFailed, Op: op, Err: err}
	}

	body, err := g.do(ctx, op, http.MethodPost, "/cart/", payload)
	if err != nil {
		return cartdomain.CartItem{}, err
	}

	var item cartdomain.CartItem
	if err := json.Unmarshal(body, &item); err != nil {
		return cartdomain.CartItem{}, &domain.SyncError{Kind: domain.KindMalformedResponse, Op: op, Message: "add response could not be decoded", Err: err}
	}
	return item, nil
}

func (g *Gateway) SetQuantity(ctx context.Context, itemID int64, qty int) error {
	path := "/cart/" + strconv.FormatInt(itemID, 10) + "?quantity=" + strconv.Itoa(qty)
	_, err := g.do(ctx, "set quantity", http.MethodPut, path, nil)
	return err
}

func (g *Gateway) RemoveItem(ctx context.Context, itemID int64) error {
	_, err := g.do(ctx, "remove item", http.MethodDelete, "/cart/"+strconv.FormatInt(itemID, 10), nil)
	return err
}

func (g *Gateway) Clear(ctx context.Context) error {
	_, err := g.do(ctx, "clear cart", http.MethodDelete, "/cart/", nil)
	return err
}

func (g *Gateway) Checkout(ctx context.Context) (orderdomain.Order, error) {
	const op = "checkout"

	body, err := g.do(ctx, op, http.MethodPost, "/orders/", nil)
	if err != nil {
		return orderdomain.Order{}, err
	}

	var order orderdomain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return orderdomain.Order{}, &domain.SyncError{Kind: domain.KindMalformedResponse, Op: op, Message: "order response could not be decoded", Err: err}
	}
	return order, nil
}

// Probe reports whether the backend answered at all. Any status below 500
// counts as reachable.
func (g *Gateway) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug("probe failed", slog.String("err", err.Error()))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return resp.StatusCode < http.StatusInternalServerError
}

func (g *Gateway) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.MutationTimeout)
	defer cancel()

	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.base+path, rdr)
	if err != nil {
		return nil, &domain.SyncError{Kind: domain.KindValidationFailed, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		se := &domain.SyncError{Kind: transportKind(err), Op: op, Err: err}
		g.log.Warn("request failed",
			slog.String("op", op),
			slog.String("kind", se.Kind.String()),
			slog.String("err", err.Error()),
		)
		return nil, se
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.SyncError{Kind: transportKind(err), Op: op, Status: resp.StatusCode, Err: err}
	}

	g.log.Debug("request done",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.SyncError{
			Kind:    domain.KindServerRejected,
			Op:      op,
			Status:  resp.StatusCode,
			Message: rejectMessage(resp, body),
		}
	}
	return body, nil
}

// transportKind separates deadlines from everything else that kept the
// request from completing.
func transportKind(err error) domain.Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return domain.KindTimeout
	}
	return domain.KindUnreachable
}

// rejectMessage pulls "detail" out of an error body. Validation errors carry
// a list of {msg} objects instead of a string.
func rejectMessage(resp *http.Response, body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &envelope) == nil && len(envelope.Detail) > 0 {
		var s string
		if json.Unmarshal(envelope.Detail, &s) == nil && s != "" {
			return s
		}

		var list []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(envelope.Detail, &list) == nil {
			msgs := make([]string, 0, len(list))
			for _, m := range list {
				if m.Msg != "" {
					msgs = append(msgs, m.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return fmt.Sprintf("server returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
