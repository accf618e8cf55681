package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware guards the purchase API. The storefront backend
// authenticates with X-API-Key, compared in constant time. When a JWT
// secret is configured, a valid Bearer token is accepted instead; either
// credential satisfies the middleware.
func AuthMiddleware(apiKey, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-API-Key")
		if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			c.Set("clientID", "api-key")
			c.Next()
			return
		}

		if jwtSecret != "" {
			if clientID, ok := validBearer(c.GetHeader("Authorization"), jwtSecret); ok {
				c.Set("clientID", clientID)
				c.Next()
				return
			}
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		c.Abort()
	}
}

// validBearer parses an Authorization header as a Bearer JWT and returns
// the caller identity it carries. MapClaims parsing keeps compatibility
// with whatever issuer the storefront uses; uid is preferred, sub is the
// standard fallback.
func validBearer(authHeader, secret string) (string, bool) {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	if uid, ok := claims["uid"].(string); ok {
		return uid, true
	}
	if sub, ok := claims["sub"].(string); ok {
		return sub, true
	}
	return "jwt", true
}

// CORSMiddleware builds the CORS policy for the configured origins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
	}
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	return cors.New(corsConfig)
}
