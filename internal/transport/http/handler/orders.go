package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/application/order"
	"github.com/go-storefront-api/internal/transport/http/middleware"
)

// OrderHandler serves order placement and the guest limit check.
type OrderHandler struct {
	svc order.Service
	log *zap.Logger
}

func NewOrderHandler(svc order.Service, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	if accountID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req order.PlaceOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	placed, err := h.svc.PlaceAccountOrder(r.Context(), accountID, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderEnvelope{
		Message:     "Order created successfully",
		OrderID:     placed.OrderID,
		OrderNumber: placed.OrderNumber,
	})
}

func (h *OrderHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req order.PlaceOrderRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	placed, err := h.svc.PlaceGuestOrder(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, OrderEnvelope{
		Message:     "Guest order created successfully",
		OrderID:     placed.OrderID,
		OrderNumber: placed.OrderNumber,
	})
}

func (h *OrderHandler) CheckGuestLimits(w http.ResponseWriter, r *http.Request) {
	var req order.LimitsRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	limits, err := h.svc.CheckGuestLimits(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, limits)
}
