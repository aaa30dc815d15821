package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotebookController struct {
	Service *service.NotebookService
}

func NewNotebookController(svc *service.NotebookService) *NotebookController {
	return &NotebookController{Service: svc}
}

// @Summary 笔记本列表
// @Description 首次访问时自动创建默认笔记本，附带每个笔记本的笔记数
// @Tags 笔记本
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Notebook}
// @Router /api/notebooks [get]
func (c *NotebookController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	books, err := c.Service.List(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, books)
}

// @Summary 创建笔记本
// @Tags 笔记本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.NotebookInput true "笔记本信息"
// @Success 201 {object} util.Response{data=model.Notebook}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/notebooks [post]
func (c *NotebookController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.NotebookInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	book, err := c.Service.Create(user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, book)
}

// @Summary 更新笔记本
// @Tags 笔记本
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "笔记本ID"
// @Param body body service.NotebookInput true "笔记本信息"
// @Success 200 {object} util.Response{data=model.Notebook}
// @Failure 404 {object} util.Response "笔记本不存在"
// @Router /api/notebooks/{id} [put]
func (c *NotebookController) Update(ctx *gin.Context) {
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

	var req service.NotebookInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	book, err := c.Service.Update(user.UserID, id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, book)
}

// @Summary 删除笔记本
// @Description 默认笔记本不可删除，笔记本中的笔记移入「日常笔记」
// @Tags 笔记本
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "笔记本ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "不能删除默认笔记本"
// @Failure 404 {object} util.Response "笔记本不存在"
// @Router /api/notebooks/{id} [delete]
func (c *NotebookController) Delete(ctx *gin.Context) {
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
