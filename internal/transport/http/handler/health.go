package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler reports the state of the process's dependencies. The
// endpoint always answers 200; a failing database is reported in the body.
type HealthHandler struct {
	pingDB          func(ctx context.Context) error
	emailConfigured bool
	smsConfigured   bool
	kvBackend       string
	primaryKV       bool
	now             func() time.Time
}

// HealthConfig describes what the health endpoint reports.
type HealthConfig struct {
	PingDB          func(ctx context.Context) error
	EmailConfigured bool
	SMSConfigured   bool
	// KVBackend is the verification store actually in use.
	KVBackend string
	// PrimaryKV is true when the shared store answered at startup.
	PrimaryKV bool
}

func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	return &HealthHandler{
		pingDB:          cfg.PingDB,
		emailConfigured: cfg.EmailConfigured,
		smsConfigured:   cfg.SMSConfigured,
		kvBackend:       cfg.KVBackend,
		primaryKV:       cfg.PrimaryKV,
		now:             time.Now,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	env := HealthEnvelope{
		Status:         "healthy",
		Timestamp:      h.now().UTC().Format(time.RFC3339),
		Database:       "healthy",
		EmailService:   configured(h.emailConfigured),
		SMSService:     configured(h.smsConfigured),
		KVBackend:      h.kvBackend,
		RedisAvailable: h.primaryKV,
	}
	if h.pingDB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pingDB(ctx); err != nil {
			env.Database = "unhealthy: " + err.Error()
		}
	}
	writeJSON(w, http.StatusOK, env)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
