package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/application/product"
)

type ProductHandler struct {
	svc product.Service
	log *zap.Logger
}

func NewProductHandler(svc product.Service, log *zap.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: log}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		h.log.Error("list products", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// StockCheck answers with an id -> stock object; unknown ids report 0.
func (h *ProductHandler) StockCheck(w http.ResponseWriter, r *http.Request) {
	var req product.StockCheckRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	levels, err := h.svc.StockCheck(r.Context(), req.ProductIDs)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}
