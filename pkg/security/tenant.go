package security

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextTenantID = "tenantID"
	ContextActor    = "actor"
)

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

// TenantMiddleware validates the bearer token issued by the identity service
// and places the tenant id and actor name on the request context. The ledger
// trusts these claims; it performs no authentication of its own.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Authorization header missing"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return jwtSecret, nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token claims"})
			return
		}

		tenantID, ok := claims["tenant_id"].(float64)
		if !ok || tenantID <= 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Token missing tenant"})
			return
		}

		actor, _ := claims["actor"].(string)
		if actor == "" {
			actor = "unknown"
		}

		c.Set(ContextTenantID, int(tenantID))
		c.Set(ContextActor, actor)
		c.Next()
	}
}

// TenantID reads the tenant placed on the context by TenantMiddleware.
func TenantID(c *gin.Context) int {
	return c.GetInt(ContextTenantID)
}

// Actor reads the acting identity placed on the context by TenantMiddleware.
func Actor(c *gin.Context) string {
	return c.GetString(ContextActor)
}
