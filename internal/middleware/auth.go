package middleware

import (
	"context"
	"errors"
	"strings"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthMiddleware accepts a bearer token, or a token query parameter for
// download links opened directly in the browser. The account is reloaded on
// every request, so disabling it or revoking a role applies at once and the
// roles in context are the stored grants rather than the token's.
func AuthMiddleware(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			logger.Log.Debug("rejected token", zap.String("path", c.FullPath()), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Debug("token for unknown user", zap.Uint("user_id", claims.UserID))
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if err != nil {
			util.HandleError(c, err)
			c.Abort()
			return
		}
		if user.Disabled {
			logger.Log.Info("disabled user rejected", zap.Uint("user_id", user.ID), zap.String("path", c.FullPath()))
			util.HandleError(c, util.ErrUserDisabled)
			c.Abort()
			return
		}

		claims.Roles = user.Roles()
		util.SetUserInContext(c, claims)
		c.Next()
	}
}

// RequirePolicy lets the request through when the caller's roles satisfy policy.
func RequirePolicy(policy model.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if !policy(user.Roles) {
			logger.Log.Info("access denied",
				zap.Uint("user_id", user.UserID),
				zap.Any("roles", user.Roles),
				zap.String("path", c.FullPath()),
			)
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
