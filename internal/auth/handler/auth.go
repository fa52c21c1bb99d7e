package handler

import (
	"net/http"
	"strings"

	"crm-server/internal/apierrors"
	"crm-server/internal/auth/processor"
	"crm-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by HandleJWTMiddleware
const (
	UserIDKey   = "User-ID"
	TenantIDKey = "Tenant-ID"
	RoleKey     = "Role"
)

type Handler struct {
	authProcessor processor.AuthProcessor
	logger        *observability.Logger
}

func New(authProcessor processor.AuthProcessor, logger *observability.Logger) Handler {
	return Handler{authProcessor: authProcessor, logger: logger}
}

func (h *Handler) HandleJWTMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	tokenHeader := c.GetHeader("Authorization")

	if tokenHeader == "" || !strings.HasPrefix(tokenHeader, "Bearer ") {
		abortUnauthorized(c, "Authorization token is missing or invalid")
		return
	}

	tokenString := strings.TrimPrefix(tokenHeader, "Bearer ")

	claims, err := h.authProcessor.ValidateJWTToken(ctx, tokenString)
	if err != nil {
		abortUnauthorized(c, "Authorization token is missing or invalid")
		return
	}

	c.Set(UserIDKey, claims.Subject)
	c.Set(RoleKey, claims.Role)
	fields := []observability.Field{{Key: "user_id", Value: claims.Subject}}

	if tenantID, err := claims.Tenant(); err == nil {
		c.Set(TenantIDKey, tenantID.String())
		fields = append(fields, observability.Field{Key: "tenant_id", Value: tenantID.String()})
	}

	c.Request = c.Request.WithContext(observability.WithFields(ctx, fields...))
	c.Next()
}

// RequireRole rejects tokens whose role is not one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		apiErr := apierrors.Forbidden("Insufficient permissions")
		c.AbortWithStatusJSON(apiErr.StatusCode, apierrors.ErrorResponse{Error: apiErr.Message, Code: apiErr.Code})
	}
}

// TenantID returns the tenant set by HandleJWTMiddleware
func TenantID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetString(TenantIDKey)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UserID returns the token subject when it is a uuid
func UserID(c *gin.Context) *uuid.UUID {
	id, err := uuid.Parse(c.GetString(UserIDKey))
	if err != nil {
		return nil
	}
	return &id
}

func abortUnauthorized(c *gin.Context, msg string) {
	apiErr := apierrors.Unauthorized(msg)
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.ErrorResponse{Error: apiErr.Message, Code: apiErr.Code})
}
