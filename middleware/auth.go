package middleware

import (
	"context"
	"net/http"
	"strings"

	"travel-backend/models"
	"travel-backend/services"

	"github.com/gin-gonic/gin"
)

const userKey = "currentUser"

// TokenParser validates an access token.
type TokenParser interface {
	ParseAccess(token string) (*services.Claims, error)
}

// UserFinder loads the account a token was issued to.
type UserFinder interface {
	FindActiveUser(ctx context.Context, id uint) (*models.User, error)
}

// Auth requires a valid "Bearer" access token whose account is still active.
func Auth(tokens TokenParser, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
				"code":   "not_authenticated",
			})
			return
		}

		claims, err := tokens.ParseAccess(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": services.ErrTokenInvalid.Message,
				"code":   services.ErrTokenInvalid.Code,
			})
			return
		}

		user, err := users.FindActiveUser(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": services.ErrUserNotFound.Message,
				"code":   services.ErrUserNotFound.Code,
			})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireStaff must run after Auth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
				"code":   "not_authenticated",
			})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"detail": "You do not have permission to perform this action.",
				"code":   "permission_denied",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account set by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser is used by handlers mounted without Auth in tests.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
}
