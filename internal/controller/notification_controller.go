package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Hub *service.NotificationHub
}

func NewNotificationController(hub *service.NotificationHub) *NotificationController {
	return &NotificationController{Hub: hub}
}

// Stream godoc
// @Summary Live learner notifications
// @Description Upgrades to a WebSocket that pushes the caller's graded attempts, progress resets and issued certificates. Browsers pass the JWT in the token query parameter.
// @Tags notification
// @Security ApiKeyAuth
// @Param   token query string false "JWT when headers cannot be set"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} util.Response
// @Router /api/notifications/ws [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}
	c.Hub.Serve(ctx.Writer, ctx.Request, claims.UserID)
}
