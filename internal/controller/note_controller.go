package controller

import (
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NoteController struct {
	Service *service.NoteService
}

func NewNoteController(svc *service.NoteService) *NoteController {
	return &NoteController{Service: svc}
}

// @Summary 创建笔记
// @Description 未指定笔记本时放入「日常笔记」
// @Tags 笔记
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CreateNoteInput true "笔记内容"
// @Success 201 {object} util.Response{data=model.Note}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "笔记本或学习路线不存在"
// @Router /api/notes [post]
func (c *NoteController) Create(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateNoteInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.Service.Create(user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, note)
}

// @Summary 笔记列表
// @Description 按更新时间倒序，可按标签或笔记本筛选
// @Tags 笔记
// @Produce json
// @Security ApiKeyAuth
// @Param tag query string false "标签"
// @Param notebook_id query int false "笔记本ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/notes [get]
func (c *NoteController) List(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page := util.QueryInt(ctx, "page", 1)
	limit := util.QueryInt(ctx, "limit", 50)
	filter := repository.NoteFilter{Tag: ctx.Query("tag")}
	if nb := util.QueryInt(ctx, "notebook_id", 0); nb > 0 {
		filter.NotebookID = uint(nb)
	}

	notes, total, err := c.Service.List(user.UserID, filter, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: notes, Total: total, Page: page, Limit: limit})
}

// @Summary 笔记详情
// @Tags 笔记
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "笔记ID"
// @Success 200 {object} util.Response{data=model.Note}
// @Failure 404 {object} util.Response "笔记不存在"
// @Router /api/notes/{id} [get]
func (c *NoteController) Get(ctx *gin.Context) {
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

	note, err := c.Service.Get(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, note)
}

// @Summary 更新笔记
// @Description 只修改请求中出现的字段
// @Tags 笔记
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "笔记ID"
// @Param body body service.UpdateNoteInput true "修改内容"
// @Success 200 {object} util.Response{data=model.Note}
// @Failure 404 {object} util.Response "笔记不存在"
// @Router /api/notes/{id} [put]
func (c *NoteController) Update(ctx *gin.Context) {
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

	var req service.UpdateNoteInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	note, err := c.Service.Update(user.UserID, id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, note)
}

// @Summary 删除笔记
// @Tags 笔记
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "笔记ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "笔记不存在"
// @Router /api/notes/{id} [delete]
func (c *NoteController) Delete(ctx *gin.Context) {
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
