package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/contextutil"
	"github.com/ELEKE-TECH/api-proprenet-rh-sub000/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and extracts the actor identity
// stamped on audit fields. Authorization decisions belong to the caller's
// gateway, not this service.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token not found", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			code := "INVALID_TOKEN"
			message := "Invalid token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				code = "TOKEN_EXPIRED"
				message = "Token has expired"
			}
			response.Error(c, http.StatusUnauthorized, code, message, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token claims", nil)
			c.Abort()
			return
		}

		actorID, ok := claims["actor_id"].(string)
		if !ok || actorID == "" {
			// Older tokens carry the actor under user_id.
			actorID, _ = claims["user_id"].(string)
		}
		if actorID == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Actor ID not found in token", nil)
			c.Abort()
			return
		}

		c.Set("actor_id", actorID)

		ctx := contextutil.WithActorID(c.Request.Context(), actorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
