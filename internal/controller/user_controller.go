package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// UserController 管理员用户管理
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// swagger:model SetDisabledRequest
type SetDisabledRequest struct {
	Disabled bool `json:"disabled"`
}

// GetUsers godoc
// @Summary 用户列表
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Failure 403 {object} util.Response "无权限"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page := util.QueryInt(ctx, "page", 1)
	limit := util.QueryInt(ctx, "limit", 20)

	users, total, err := c.UserService.GetUsers(page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

// SetDisabled godoc
// @Summary 禁用或启用用户
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Param body body SetDisabledRequest true "是否禁用"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "不能禁用当前账号"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/disabled [patch]
func (c *UserController) SetDisabled(ctx *gin.Context) {
	operator := util.GetUserFromContext(ctx)
	if operator == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req SetDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.UserService.SetDisabled(operator.UserID, id, req.Disabled); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"id": id, "disabled": req.Disabled})
}
