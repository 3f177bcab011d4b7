package controller

import (
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/service"
	"baitapvui_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssignmentController struct {
	AssignmentService *service.AssignmentService
}

func NewAssignmentController(assignmentService *service.AssignmentService) *AssignmentController {
	return &AssignmentController{AssignmentService: assignmentService}
}

// CreateAssignment godoc
// @Summary 创建作业草稿
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AssignmentRequest true "作业信息"
// @Success 201 {object} util.Response{data=model.Assignment} "创建成功"
// @Failure 422 {object} util.ErrorBody "校验失败"
// @Router /api/assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	var req model.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AssignmentService.CreateDraft(util.GetUserFromContext(ctx), req, util.GetTranslator(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// ListAssignments godoc
// @Summary 我的作业
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Assignment} "成功"
// @Router /api/assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	list, err := c.AssignmentService.List(util.GetUserFromContext(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetAssignment godoc
// @Summary 获取作业
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 404 {object} util.ErrorBody "作业不存在"
// @Router /api/assignments/{id} [get]
func (c *AssignmentController) GetAssignment(ctx *gin.Context) {
	a, err := c.AssignmentService.Get(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// UpdateAssignment godoc
// @Summary 更新作业草稿
// @Tags 作业管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Param request body model.AssignmentRequest true "作业信息"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.ErrorBody "作业已发布"
// @Failure 422 {object} util.ErrorBody "校验失败"
// @Router /api/assignments/{id} [put]
func (c *AssignmentController) UpdateAssignment(ctx *gin.Context) {
	var req model.AssignmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.AssignmentService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req, util.GetTranslator(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, a)
}

// PublishAssignment godoc
// @Summary 发布作业
// @Description 发布前需要选择班级并至少有一道题
// @Tags 作业管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=model.Assignment} "成功"
// @Failure 409 {object} util.ErrorBody "作业已发布"
// @Failure 422 {object} util.ErrorBody "不满足发布条件"
// @Router /api/assignments/{id}/publish [post]
func (c *AssignmentController) PublishAssignment(ctx *gin.Context) {
	a, err := c.AssignmentService.Publish(util.GetUserFromContext(ctx), ctx.Param("id"), util.GetTranslator(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, a)
}
