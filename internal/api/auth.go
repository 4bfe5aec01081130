package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/newsdesk-api/internal/models"
)

const principalKey = "principal"

var errInvalidToken = errors.New("invalid token")

// parseToken verifies an HS256 bearer token and extracts the caller.
// Tokens are issued elsewhere; sub is the numeric user id and role is
// author or admin.
func parseToken(raw, secret string) (models.Principal, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.Principal{}, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Principal{}, errInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return models.Principal{}, errInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID < 1 {
		return models.Principal{}, errInvalidToken
	}

	role, _ := claims["role"].(string)
	switch models.Role(role) {
	case models.RoleAuthor, models.RoleAdmin:
	default:
		return models.Principal{}, errInvalidToken
	}

	return models.Principal{UserID: userID, Role: models.Role(role)}, nil
}

// authenticate rejects requests without a valid bearer token
func authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
			return
		}

		p, err := parseToken(strings.TrimSpace(raw), secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// requireAdmin must run after authenticate
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principal(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

func principal(c *gin.Context) models.Principal {
	p, _ := c.Get(principalKey)
	caller, _ := p.(models.Principal)
	return caller
}
