package controller

import (
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	UserService *service.UserService
}

func NewAdminController(userService *service.UserService) *AdminController {
	return &AdminController{UserService: userService}
}

type userView struct {
	*model.User
	Roles model.RoleSet `json:"roles"`
}

func viewUser(u *model.User) userView {
	return userView{User: u, Roles: u.Roles()}
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page"
// @Param   limit query int false "Page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	users, total, err := c.UserService.List(ctx.Request.Context(), page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	list := make([]userView, len(users))
	for i := range users {
		list[i] = viewUser(&users[i])
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

type GrantRoleRequest struct {
	Role string `json:"role" binding:"required,role"`
}

// GrantRole godoc
// @Summary Grant a role
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   body body GrantRoleRequest true "Role to grant"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/roles [post]
func (c *AdminController) GrantRole(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req GrantRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.GrantRole(ctx.Request.Context(), id, role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, viewUser(user))
}

// RevokeRole godoc
// @Summary Revoke a role
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   role path string true "Role"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "Admins cannot revoke their own admin role"
// @Router /api/admin/users/{id}/roles/{role} [delete]
func (c *AdminController) RevokeRole(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	role, err := model.ParseRole(ctx.Param("role"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	actor := util.GetUserFromContext(ctx)
	user, err := c.UserService.RevokeRole(ctx.Request.Context(), actor.UserID, id, role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, viewUser(user))
}

type DisableUserRequest struct {
	Disabled bool `json:"disabled"`
}

// SetDisabled godoc
// @Summary Disable or re-enable an account
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   body body DisableUserRequest true "Disabled flag"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disable [post]
func (c *AdminController) SetDisabled(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req DisableUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	actor := util.GetUserFromContext(ctx)
	if err := c.UserService.SetDisabled(ctx.Request.Context(), actor.UserID, id, req.Disabled); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id, "disabled": req.Disabled})
}
