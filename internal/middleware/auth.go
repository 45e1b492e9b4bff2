package middleware

import (
	"errors"
	"net/http"
	"strings"

	"newsreader/internal/db"
	"newsreader/internal/models"
	"newsreader/internal/services"

	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// CurrentUser returns the authenticated user attached by AuthRequired or
// LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if val, exists := c.Get(CheckUserKey); exists {
		if user, ok := val.(*models.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	// Clients sometimes serialize an absent token literally
	if token == "" || token == "null" || token == "undefined" {
		return "", false
	}
	return token, true
}

// AuthRequired enforces a valid bearer token and loads the user. The 401
// message distinguishes missing, expired and malformed tokens.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Missing token"})
			return
		}

		userID, err := services.GetTokenService().VerifyAccessToken(token)
		if err != nil {
			message := "Malformed token"
			if errors.Is(err, services.ErrTokenExpired) {
				message = "Token expired, please log in again"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
			return
		}

		var user models.User
		if err := db.DB.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
			return
		}

		c.Set(CheckUserKey, &user)
		c.Next()
	}
}

// LoadUser attaches the user when a valid bearer token is present and
// stays silent otherwise. Used on routes where authentication only
// enriches the response (per-caller isLiked flags, share attribution).
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if userID, err := services.GetTokenService().VerifyAccessToken(token); err == nil {
				var user models.User
				if err := db.DB.First(&user, userID).Error; err == nil {
					c.Set(CheckUserKey, &user)
				}
			}
		}
		c.Next()
	}
}
