package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewSimulatorController struct {
	Service *service.InterviewSimulatorService
}

func NewInterviewSimulatorController(svc *service.InterviewSimulatorService) *InterviewSimulatorController {
	return &InterviewSimulatorController{Service: svc}
}

// swagger:model StartInterviewRequest
type StartInterviewRequest struct {
	LearningPathID uint `json:"learning_path_id" binding:"required"`
}

// swagger:model ContinueInterviewRequest
type ContinueInterviewRequest struct {
	SessionID uint   `json:"session_id" binding:"required"`
	Answer    string `json:"answer" binding:"required"`
}

// swagger:model EndInterviewRequest
type EndInterviewRequest struct {
	SessionID uint `json:"session_id" binding:"required"`
}

// @Summary 开始模拟面试
// @Description 从学习路线题库中随机抽一道题作为开场
// @Tags 模拟面试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body StartInterviewRequest true "学习路线"
// @Success 200 {object} util.Response{data=service.StartResult}
// @Failure 404 {object} util.Response "学习路线不存在或题库为空"
// @Router /api/interview-simulator/start [post]
func (c *InterviewSimulatorController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartInterviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.Start(ctx.Request.Context(), user.UserID, req.LearningPathID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 回答并获取下一轮提问
// @Tags 模拟面试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ContinueInterviewRequest true "回答"
// @Success 200 {object} util.Response{data=service.ContinueResult}
// @Failure 404 {object} util.Response "会话不存在或已结束"
// @Router /api/interview-simulator/continue [post]
func (c *InterviewSimulatorController) Continue(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ContinueInterviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.Continue(ctx.Request.Context(), user.UserID, req.SessionID, req.Answer)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 结束模拟面试
// @Description 生成面试评估，重复调用返回同一评估
// @Tags 模拟面试
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EndInterviewRequest true "会话"
// @Success 200 {object} util.Response{data=service.EndResult}
// @Router /api/interview-simulator/end [post]
func (c *InterviewSimulatorController) End(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req EndInterviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.End(ctx.Request.Context(), user.UserID, req.SessionID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}

// @Summary 模拟面试历史
// @Tags 模拟面试
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "条数" default(10)
// @Success 200 {object} util.Response{data=[]service.SessionSummary}
// @Router /api/interview-simulator/history [get]
func (c *InterviewSimulatorController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	history, err := c.Service.History(user.UserID, util.QueryInt(ctx, "limit", 10))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"sessions": history})
}

// @Summary 模拟面试详情
// @Tags 模拟面试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionDetail}
// @Failure 404 {object} util.Response "会话不存在"
// @Router /api/interview-simulator/session/{id} [get]
func (c *InterviewSimulatorController) Detail(ctx *gin.Context) {
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

	detail, err := c.Service.Detail(user.UserID, id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, detail)
}
