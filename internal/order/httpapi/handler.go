package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/cart-sync/internal/order/app"
	"github.com/dwikikusuma/cart-sync/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

const DefaultUserID int64 = 1

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the order resource. Callers mount it under /orders.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.CreateFromCart(r.Context(), DefaultUserID)
	if errors.Is(err, app.ErrEmptyCart) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error("create order failed", slog.Any("err", err))
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), DefaultUserID)
	if err != nil {
		h.log.Error("list orders failed", slog.Any("err", err))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}
