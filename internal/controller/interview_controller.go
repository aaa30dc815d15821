package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type InterviewController struct {
	Service *service.InterviewService
}

func NewInterviewController(svc *service.InterviewService) *InterviewController {
	return &InterviewController{Service: svc}
}

// swagger:model WeakPointRequest
type WeakPointRequest struct {
	LearningPathID uint `json:"learning_path_id" binding:"required"`
	Count          int  `json:"count"`
}

// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

// swagger:model ExportMistakesRequest
type ExportMistakesRequest struct {
	LearningPathID uint `json:"learning_path_id"`
}

// @Summary 生成面试题
// @Description 按学习路线岗位生成面试题，数量 1-100，默认 20
// @Tags 面试题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.GenerateQuestionsInput true "生成参数"
// @Success 201 {object} util.Response{data=[]model.InterviewQuestion}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 502 {object} util.Response "AI服务不可用"
// @Router /api/interview/generate [post]
func (c *InterviewController) Generate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.GenerateQuestionsInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, err := c.Service.GenerateQuestions(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"questions": questions, "count": len(questions)})
}

// @Summary 针对薄弱点生成面试题
// @Tags 面试题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body WeakPointRequest true "生成参数"
// @Success 201 {object} util.Response{data=[]model.InterviewQuestion}
// @Failure 400 {object} util.Response "暂无薄弱点数据"
// @Router /api/interview/generate-weak-points [post]
func (c *InterviewController) GenerateWeakPoints(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req WeakPointRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, err := c.Service.GenerateWeakPointQuestions(ctx.Request.Context(), user.UserID, req.LearningPathID, req.Count)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"questions": questions, "count": len(questions)})
}

// @Summary 面试题列表
// @Tags 面试题库
// @Produce json
// @Security ApiKeyAuth
// @Param pathId path int true "学习路线ID"
// @Param status query string false "all / not_seen / mastered / not_mastered"
// @Success 200 {object} util.Response{data=service.QuestionList}
// @Router /api/interview/questions/{pathId} [get]
func (c *InterviewController) ListQuestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pathID, err := util.ParamID(ctx, "pathId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	list, err := c.Service.ListQuestions(user.UserID, pathID, ctx.Query("status"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, list)
}

// @Summary 更新题目掌握状态
// @Tags 面试题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body UpdateStatusRequest true "状态"
// @Success 200 {object} util.Response{data=model.QuestionStatus}
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/interview/status [post]
func (c *InterviewController) UpdateStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	status, err := c.Service.UpdateStatus(user.UserID, req.QuestionID, req.Status)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, status)
}

// @Summary 刷题统计
// @Tags 面试题库
// @Produce json
// @Security ApiKeyAuth
// @Param pathId path int true "学习路线ID"
// @Success 200 {object} util.Response{data=service.InterviewStatistics}
// @Router /api/interview/statistics/{pathId} [get]
func (c *InterviewController) Statistics(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pathID, err := util.ParamID(ctx, "pathId")
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	stats, err := c.Service.Statistics(user.UserID, pathID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

// @Summary 错题本
// @Tags 面试题库
// @Produce json
// @Security ApiKeyAuth
// @Param learning_path_id query int false "学习路线ID，不传返回全部"
// @Success 200 {object} util.Response{data=[]model.QuestionWithStatus}
// @Router /api/interview/mistakes [get]
func (c *InterviewController) Mistakes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	pathID := util.MustParseUint(ctx.Query("learning_path_id"))
	mistakes, err := c.Service.Mistakes(user.UserID, pathID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"mistakes": mistakes, "total": len(mistakes)})
}

// @Summary 导出错题
// @Description 生成 CSV 文件并上传到存储，返回下载地址
// @Tags 面试题库
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ExportMistakesRequest false "导出范围"
// @Success 200 {object} util.Response{data=service.ExportResult}
// @Failure 400 {object} util.Response "暂无错题可导出"
// @Router /api/interview/mistakes/export [post]
func (c *InterviewController) ExportMistakes(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ExportMistakesRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	res, err := c.Service.ExportMistakes(ctx.Request.Context(), user.UserID, req.LearningPathID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, res)
}
