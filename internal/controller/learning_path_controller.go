package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LearningPathController struct {
	Service        *service.LearningPathService
	ContentService *service.ContentService
}

func NewLearningPathController(svc *service.LearningPathService, content *service.ContentService) *LearningPathController {
	return &LearningPathController{Service: svc, ContentService: content}
}

// swagger:model GenerateContentRequest
type GenerateContentRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// @Summary 生成学习路线
// @Description 根据目标岗位和职位描述生成学习路线思维导图
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.GeneratePathInput true "岗位信息"
// @Success 201 {object} util.Response{data=model.LearningPath}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 502 {object} util.Response "AI服务不可用"
// @Router /api/learning-paths/generate [post]
func (c *LearningPathController) Generate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GeneratePathInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.Service.Generate(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, path)
}

// @Summary 学习路线列表
// @Tags 学习路线
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(10)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/learning-paths [get]
func (c *LearningPathController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page := util.QueryInt(ctx, "page", 1)
	limit := util.QueryInt(ctx, "limit", 10)

	paths, total, err := c.Service.List(user.UserID, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: paths, Total: total, Page: page, Limit: limit})
}

// @Summary 学习路线详情
// @Tags 学习路线
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学习路线ID"
// @Success 200 {object} util.Response{data=model.LearningPath}
// @Failure 404 {object} util.Response "学习路线不存在"
// @Router /api/learning-paths/{id} [get]
func (c *LearningPathController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	path, err := c.Service.Get(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, path)
}

// @Summary 删除学习路线
// @Description 同时删除路线下的面试题和答题记录
// @Tags 学习路线
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学习路线ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "学习路线不存在"
// @Router /api/learning-paths/{id} [delete]
func (c *LearningPathController) Delete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	if err := c.Service.Delete(user.UserID, id); err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "删除成功"})
}

// @Summary 生成学习路线扩展内容
// @Description content_type 可选 courses、books、certifications、knowledge、interview-tips、mindmap。资源类每次调用翻到下一页并合并去重，文本类生成一次后走缓存。
// @Tags 学习路线
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "学习路线ID"
// @Param body body GenerateContentRequest true "内容类型"
// @Success 200 {object} util.Response{data=service.GenerateResult}
// @Failure 400 {object} util.Response "不支持的内容类型"
// @Failure 404 {object} util.Response "学习路线不存在"
// @Failure 502 {object} util.Response "AI服务不可用"
// @Router /api/learning-paths/{id}/generate-content [post]
func (c *LearningPathController) GenerateContent(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	var req GenerateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.ContentService.GenerateContent(ctx.Request.Context(), user.UserID, id, req.ContentType)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}
