package middleware

import (
	"loyalty-ledger/pkg/apperror"
	"loyalty-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Tenancy headers, populated by the upstream gateway. The resolver that
	// authenticates callers and maps them to tenants lives outside this
	// service; these values are trusted as-is.
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"

	// HeaderIdempotencyKey carries the client-chosen retry key on mutations.
	HeaderIdempotencyKey = "Idempotency-Key"

	// Context keys
	CtxTenantID = "tenant_id"
	CtxUserID   = "user_id"
)

// TenantContext resolves the tenant from X-Tenant-ID and stores it in the
// request context. Every route under /api/v1 requires it; requests without a
// parseable tenant are rejected before any handler runs. X-User-ID is parsed
// when present so privileged routes can attribute actions.
func TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderTenantID)
		if raw == "" {
			response.Error(c, apperror.ErrMissingTenant())
			c.Abort()
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, apperror.ErrMissingTenant())
			c.Abort()
			return
		}
		c.Set(CtxTenantID, tenantID)

		if rawUser := c.GetHeader(HeaderUserID); rawUser != "" {
			if userID, err := uuid.Parse(rawUser); err == nil {
				c.Set(CtxUserID, userID)
			}
		}

		c.Next()
	}
}

// RequireUser gates operator routes on a resolved X-User-ID, so every
// privileged mutation has an actor to audit.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(CtxUserID); !ok {
			response.Error(c, apperror.ErrMissingUser())
			c.Abort()
			return
		}
		c.Next()
	}
}
