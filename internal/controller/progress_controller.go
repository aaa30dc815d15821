package controller

import (
	"zhitu_backend/internal/service"
	"zhitu_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	Service *service.ProgressService
}

func NewProgressController(svc *service.ProgressService) *ProgressController {
	return &ProgressController{Service: svc}
}

// @Summary 标记学习进度
// @Description 未传的标记保持原值
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.MarkProgressInput true "进度"
// @Success 200 {object} util.Response{data=model.LearningProgress}
// @Router /api/progress/mark [post]
func (c *ProgressController) Mark(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.MarkProgressInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p, err := c.Service.Mark(user.UserID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, p)
}

// @Summary 学习进度统计
// @Tags 学习进度
// @Produce json
// @Security ApiKeyAuth
// @Param learning_path_id query int false "学习路线ID，不传统计全部"
// @Success 200 {object} util.Response{data=service.ProgressStats}
// @Router /api/progress/stats [get]
func (c *ProgressController) Stats(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Service.Stats(user.UserID, util.MustParseUint(ctx.Query("learning_path_id")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}
