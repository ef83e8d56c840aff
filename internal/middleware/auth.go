package middleware

import (
	"strings"

	"foodgram_backend/internal/auth"
	"foodgram_backend/internal/logger"
	"foodgram_backend/pkg/apperrors"
	"foodgram_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves the Authorization header into claims.
type Authenticator struct {
	tokens  *auth.TokenManager
	revoked auth.RevocationStore
}

func NewAuthenticator(tokens *auth.TokenManager, revoked auth.RevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked}
}

// tokenFromHeader accepts both "Token <t>" and "Bearer <t>".
func tokenFromHeader(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		token = strings.TrimSpace(token)
		return token, token != ""
	default:
		return "", false
	}
}

// OptionalAuth identifies the caller when a token is sent. A malformed,
// expired or revoked token is rejected even on public routes.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		tokenStr, ok := tokenFromHeader(header)
		if !ok {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		claims, err := a.tokens.ParseToken(tokenStr)
		if err != nil {
			logger.CtxDebug(ctx, "Rejected token", "error", err)
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			logger.CtxWithError(ctx, "Revocation lookup failed", err)
			apperrors.HandleError(c, apperrors.InternalError(err))
			return
		}
		if revoked {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(contextkeys.UserIDKey, claims.UserID)
		c.Set(contextkeys.ClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(ctx, claims.Subject()))
		c.Next()
	}
}

// RequireAuth rejects anonymous callers. It must run after OptionalAuth.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication credentials were not provided"))
			return
		}
		c.Next()
	}
}

// Authorize checks the route against the access policy. Anonymous callers
// get 401 so clients know to log in; authenticated ones get 403.
func Authorize(policy *auth.Policy, resource, action, owner string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if policy.Allowed(auth.RoleFor(userID), resource, action, owner) {
			c.Next()
			return
		}
		if userID == 0 {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication credentials were not provided"))
			return
		}
		logger.CtxWarn(c.Request.Context(), "Access denied", "resource", resource, "action", action)
		apperrors.HandleError(c, apperrors.NewForbiddenError("You do not have permission to perform this action"))
	}
}

// GetUserID returns the authenticated user id, or 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	v, exists := c.Get(contextkeys.UserIDKey)
	if !exists {
		return 0
	}
	id, _ := v.(uint)
	return id
}

// GetClaims returns the token claims of the current request, if any.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(contextkeys.ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
