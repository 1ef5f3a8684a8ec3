package http

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/go-storefront-api/internal/application/notification"
	jwtinfra "github.com/go-storefront-api/internal/infrastructure/jwt"
	"github.com/go-storefront-api/internal/infrastructure/kvstore"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	DB *gorm.DB
	// KV is the verification store chosen at startup; KVBackend names it.
	KV         kvstore.Store
	KVBackend  string
	Dispatcher notification.Dispatcher
	// JWTProvider may be nil, in which case account routes answer 401.
	JWTProvider     *jwtinfra.Provider
	EmailConfigured bool
	SMSConfigured   bool
	Logger          *zap.Logger
}
