package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-admin/utils"
)

// AuthMiddleware validates "Authorization: Bearer <jwt>" and stores
// user_id, role and token in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid token format"))
			c.Abort()
			return
		}

		authorize(c, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

// WebSocketAuthMiddleware is AuthMiddleware for browsers that cannot set
// headers on a websocket handshake: the token comes from ?token=.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		authorize(c, token)
	}
}

func authorize(c *gin.Context, tokenString string) {
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		c.Abort()
		return
	}
	if claims.UserID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid user ID in token"))
		c.Abort()
		return
	}

	utils.InfoLogger.Debugf("Decoded claims: user=%d role=%s", claims.UserID, claims.Role)

	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("token", tokenString)
	c.Next()
}
