package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/carafecoffee/orderflow/internal/orders"
)

const identityKey = "identity"

// identityFromToken parses a bearer token into an Identity. Returns nil for
// missing or malformed headers; an error only for a token that was presented
// but failed verification.
func identityFromToken(c *gin.Context, secret string) (*orders.Identity, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, nil
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	admin, _ := claims["admin"].(bool)

	return &orders.Identity{CustomerID: sub, Admin: admin}, nil
}

// OptionalAuth attaches an identity when a valid bearer token is present and
// rejects invalid ones. Requests without a token pass through as guests.
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFromToken(c, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		if id != nil {
			c.Set(identityKey, *id)
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := identityFromToken(c, secret)
		if err != nil || id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication_required"})
			return
		}
		c.Set(identityKey, *id)
		c.Next()
	}
}

// RequireAdmin rejects authenticated requests without the admin claim.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := currentIdentity(c)
		if !ok || !id.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_required"})
			return
		}
		c.Next()
	}
}

func currentIdentity(c *gin.Context) (orders.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return orders.Identity{}, false
	}
	id, ok := v.(orders.Identity)
	return id, ok
}
