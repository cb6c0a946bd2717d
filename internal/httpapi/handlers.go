package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/nikolayk812/rocketshoes-cart/internal/notify"
	"github.com/nikolayk812/rocketshoes-cart/internal/storefront"
	"github.com/nikolayk812/rocketshoes-cart/pkg/logger"
)

var validate = validator.New()

type handlers struct {
	catalog       productLister
	cart          cartPage
	notifications notificationDrainer
	log           *logger.Logger
}

type updateAmountRequest struct {
	Amount *int `json:"amount" validate:"required"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	cards, err := h.catalog.Products(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cards)
}

func (h *handlers) getCart(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.cart.Page())
}

func (h *handlers) addProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	cart, err := h.catalog.AddToCart(r.Context(), productID)
	h.respondCart(w, r, cart, err)
}

func (h *handlers) updateAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req updateAmountRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	cart, err := h.cart.SetAmount(r.Context(), productID, *req.Amount)
	h.respondCart(w, r, cart, err)
}

func (h *handlers) removeProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	cart, err := h.cart.Remove(r.Context(), productID)
	h.respondCart(w, r, cart, err)
}

func (h *handlers) increment(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	cart, err := h.cart.Increment(r.Context(), productID)
	h.respondCart(w, r, cart, err)
}

func (h *handlers) decrement(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	cart, err := h.cart.Decrement(r.Context(), productID)
	h.respondCart(w, r, cart, err)
}

func (h *handlers) drainNotifications(w http.ResponseWriter, _ *http.Request) {
	pending := []notify.Notification{}
	if h.notifications != nil {
		if drained := h.notifications.Drain(); drained != nil {
			pending = drained
		}
	}
	respondJSON(w, http.StatusOK, pending)
}

func (h *handlers) respondCart(w http.ResponseWriter, r *http.Request, cart domain.Cart, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, storefront.Render(cart))
}

func (h *handlers) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_product_id", Message: "product id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(r.Context(), "request failed", err)
	}
	respondJSON(w, status, errorResponse{Error: code, Message: notify.Message(err)})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrProductNotInCart):
		return http.StatusNotFound, "product_not_in_cart"
	case errors.Is(err, domain.ErrStockQueryFailed):
		return http.StatusBadGateway, "stock_query_failed"
	case errors.Is(err, domain.ErrCatalogQueryFailed):
		return http.StatusBadGateway, "catalog_query_failed"
	case errors.Is(err, domain.ErrCatalogLoadFailed):
		return http.StatusBadGateway, "catalog_load_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func decodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return validate.Struct(dest)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
