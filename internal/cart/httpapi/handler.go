package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/cart-sync/internal/cart/app"
	"github.com/dwikikusuma/cart-sync/internal/cart/domain"
	"github.com/dwikikusuma/cart-sync/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

// DefaultUserID is the single shopper the server serves until
// authentication exists.
const DefaultUserID int64 = 1

type Handler struct {
	svc *app.Service
	log *slog.Logger
}

func NewHandler(svc *app.Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the cart resource. Callers mount it under /cart.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.add)
	r.Delete("/", h.clear)
	r.Get("/count", h.count)
	r.Put("/{id}", h.setQuantity)
	r.Delete("/{id}", h.remove)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.GetCart(r.Context(), DefaultUserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req domain.AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	item, err := h.svc.AddItem(r.Context(), DefaultUserID, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	qty, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "quantity query parameter must be an integer")
		return
	}

	item, err := h.svc.SetItemQuantity(r.Context(), DefaultUserID, id, qty)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveItem(r.Context(), DefaultUserID, id); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearCart(r.Context(), DefaultUserID); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Count(r.Context(), DefaultUserID)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status, detail := mapErr(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("cart request failed", slog.Any("err", err))
	}
	httpx.WriteError(w, status, detail)
}

func mapErr(err error) (int, string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrQuantityLimit):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app.ErrNotFound), errors.Is(err, app.ErrProductNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
