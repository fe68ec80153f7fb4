package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"foodexpress/order-svc/internal/domain"
	"foodexpress/order-svc/internal/service"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Orders service.OrderServiceInterface
}

func NewHandler(orders service.OrderServiceInterface) *Handler {
	return &Handler{Orders: orders}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", httpx.Health("order-svc")).Methods("GET")

	api := r.PathPrefix("/api/v1/orders").Subrouter()
	api.Handle("/place", httpx.RequireUser(http.HandlerFunc(h.placeOrder))).Methods("POST")
	api.Handle("", httpx.RequireUser(http.HandlerFunc(h.listOrders))).Methods("GET")
	api.HandleFunc("/{trackingNumber}", h.getOrder).Methods("GET")
	api.HandleFunc("/{trackingNumber}/qrcode", h.getQRCode).Methods("GET")
	api.HandleFunc("/{trackingNumber}/status", h.updateStatus).Methods("PUT")
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var input domain.PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	result, err := h.Orders.PlaceOrder(r.Context(), httpx.UserIDFrom(r.Context()), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusCreated, "Order placed successfully", result)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListOrders(r.Context(), httpx.UserIDFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Orders retrieved", orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.GetOrder(r.Context(), mux.Vars(r)["trackingNumber"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Order retrieved", order)
}

func (h *Handler) getQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.Orders.GetQRCode(r.Context(), mux.Vars(r)["trackingNumber"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(qr)))
	w.WriteHeader(http.StatusOK)
	w.Write(qr)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	status, err := domain.ParseOrderStatus(payload.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), mux.Vars(r)["trackingNumber"], status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, r, http.StatusOK, "Order status updated", order)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		httpx.WriteError(w, r, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_payment_method", err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		httpx.WriteError(w, r, http.StatusBadRequest, "invalid_status", err.Error())
	case errors.Is(err, domain.ErrRestaurantClosed):
		httpx.WriteError(w, r, http.StatusConflict, "restaurant_closed", err.Error())
	case errors.Is(err, domain.ErrPlacementInProgress):
		httpx.WriteError(w, r, http.StatusConflict, "placement_in_progress", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		httpx.WriteError(w, r, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrRestaurantNotFound):
		httpx.WriteError(w, r, http.StatusNotFound, "restaurant_not_found", err.Error())
	case errors.Is(err, domain.ErrCartUnavailable):
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "cart_unavailable", "Cart service is unavailable, please retry")
	case errors.Is(err, domain.ErrRestaurantUnavailable):
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "restaurant_unavailable", "Restaurant service is unavailable, please retry")
	case errors.Is(err, domain.ErrPersistFailed), errors.Is(err, domain.ErrStorageUnavailable):
		httpx.WriteError(w, r, http.StatusServiceUnavailable, "order_not_saved", "Order could not be saved, please retry")
	default:
		logger.WithRequestID(httpx.RequestIDFrom(r.Context())).Error("Order request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		httpx.WriteError(w, r, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
