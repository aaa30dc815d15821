package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Service      *service.ChatService
	DraftService *service.NoteDraftService
}

func NewChatController(svc *service.ChatService, drafts *service.NoteDraftService) *ChatController {
	return &ChatController{Service: svc, DraftService: drafts}
}

// @Summary AI学习助手对话
// @Description 回放最近10条对话记录，可附带相关内容作为上下文
// @Tags AI助手
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ChatInput true "消息"
// @Success 200 {object} util.Response{data=service.ChatReply}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 502 {object} util.Response "AI服务不可用"
// @Router /api/chat [post]
func (c *ChatController) Send(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ChatInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.Service.Send(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, reply)
}

// @Summary 对话历史
// @Description 按时间正序返回，第1页为最近的记录
// @Tags AI助手
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(50)
// @Success 200 {object} util.Response{data=[]model.ChatMessage}
// @Router /api/chat/history [get]
func (c *ChatController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page := util.QueryInt(ctx, "page", 1)
	limit := util.QueryInt(ctx, "limit", 50)

	msgs, err := c.Service.History(user.UserID, page, limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, msgs)
}

// @Summary 清空对话历史
// @Tags AI助手
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/chat/history [delete]
func (c *ChatController) Clear(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	n, err := c.Service.Clear(user.UserID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "对话历史已清空", "deleted": n})
}

// @Summary 生成AI笔记草稿
// @Description 根据错题、面试题或学习路线生成笔记草稿，草稿不会自动保存
// @Tags AI助手
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.DraftInput true "数据源"
// @Success 200 {object} util.Response{data=service.NoteDraft}
// @Failure 400 {object} util.Response "不支持的数据源类型"
// @Failure 404 {object} util.Response "学习路线不存在"
// @Failure 502 {object} util.Response "AI服务不可用"
// @Router /api/ai-notes/generate-draft [post]
func (c *ChatController) GenerateDraft(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.DraftInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	draft, err := c.DraftService.Generate(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, draft)
}
