package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-storefront-api/internal/application/verification"
	"github.com/go-storefront-api/internal/transport/http/middleware"
)

// VerificationHandler serves the guest and account one-time-code flows.
type VerificationHandler struct {
	svc verification.Service
	log *zap.Logger
}

func NewVerificationHandler(svc verification.Service, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{svc: svc, log: log}
}

func (h *VerificationHandler) SendGuest(w http.ResponseWriter, r *http.Request) {
	var req verification.GuestCodeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	ch, err := h.svc.RequestGuestCode(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent via " + string(ch)})
}

func (h *VerificationHandler) VerifyGuest(w http.ResponseWriter, r *http.Request) {
	var req verification.GuestSubmitRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.svc.SubmitGuestCode(r.Context(), req); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Identity verified successfully"})
}

func (h *VerificationHandler) SendAccount(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	if accountID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req verification.AccountCodeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	ch, err := h.svc.RequestAccountCode(r.Context(), accountID, req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent via " + string(ch)})
}

func (h *VerificationHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())
	if accountID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req verification.AccountSubmitRequest
	if err := decode(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}
	if err := h.svc.SubmitAccountCode(r.Context(), accountID, req); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Account verified successfully"})
}
