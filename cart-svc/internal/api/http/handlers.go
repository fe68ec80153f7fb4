package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"foodexpress/cart-svc/internal/domain"
	"foodexpress/cart-svc/internal/service"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Carts service.CartServiceInterface
}

func NewHandler(carts service.CartServiceInterface) *Handler {
	return &Handler{Carts: carts}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", httpx.Health("cart-svc")).Methods("GET")

	api := r.PathPrefix("/api/v1/cart").Subrouter()
	api.Use(httpx.RequireUser)
	api.HandleFunc("", h.getCart).Methods("GET")
	api.HandleFunc("", h.clearCart).Methods("DELETE")
	api.HandleFunc("/items", h.addItem).Methods("POST")
	api.HandleFunc("/items/{itemId}", h.updateItem).Methods("PUT")
	api.HandleFunc("/items/{itemId}", h.removeItem).Methods("DELETE")
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var input service.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	cart, err := h.Carts.AddItem(r.Context(), httpx.UserIDFrom(r.Context()), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Item added to cart", cart)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.GetCart(r.Context(), httpx.UserIDFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Cart retrieved", cart)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	cart, err := h.Carts.UpdateItemQuantity(r.Context(), httpx.UserIDFrom(r.Context()), mux.Vars(r)["itemId"], payload.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Cart item updated", cart)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.RemoveItem(r.Context(), httpx.UserIDFrom(r.Context()), mux.Vars(r)["itemId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Item removed from cart", cart)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.ClearCart(r.Context(), httpx.UserIDFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Cart cleared", nil)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrConflictingRestaurant):
		httpx.WriteError(w, r, http.StatusBadRequest, "conflicting_restaurant", err.Error())
	case errors.Is(err, domain.ErrCartFull):
		httpx.WriteError(w, r, http.StatusBadRequest, "cart_full", err.Error())
	case errors.Is(err, domain.ErrQuantityOutOfRange):
		httpx.WriteError(w, r, http.StatusBadRequest, "quantity_out_of_range", err.Error())
	case errors.Is(err, domain.ErrInvalidItem):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_item", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		httpx.WriteError(w, r, http.StatusBadRequest, "item_not_found", err.Error())
	case errors.Is(err, domain.ErrCartNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "cart_not_found", err.Error())
	case errors.Is(err, domain.ErrRestaurantNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "restaurant_not_found", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		httpx.WriteError(w, r, http.StatusConflict, "concurrent_modification", "Cart is being modified, please retry")
	case errors.Is(err, domain.ErrDownstreamUnavailable):
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "downstream_unavailable", "A dependent service is unavailable, please retry")
	default:
		logger.WithRequestID(httpx.RequestIDFrom(r.Context())).Error("Cart request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
