package controller

import (
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/service"
	"baitapvui_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuestionController 作业题目接口
type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// CreateQuestion godoc
// @Summary 创建题目
// @Description 在草稿作业中创建题目，可同时关联已上传的媒体
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Param request body model.QuestionRequest true "题目内容"
// @Success 201 {object} util.Response{data=model.QuestionDTO} "创建成功"
// @Failure 400 {object} util.ErrorBody "请求参数错误"
// @Failure 403 {object} util.ErrorBody "权限不足"
// @Failure 404 {object} util.ErrorBody "作业不存在"
// @Failure 409 {object} util.ErrorBody "作业已发布"
// @Failure 422 {object} util.ErrorBody "校验失败"
// @Router /api/assignments/{id}/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req model.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Create(util.GetUserFromContext(ctx), ctx.Param("id"), req, util.GetTranslator(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// ListQuestions godoc
// @Summary 获取作业题目
// @Description 按顺序返回作业的全部题目
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Success 200 {object} util.Response{data=[]model.QuestionDTO} "成功"
// @Failure 403 {object} util.ErrorBody "权限不足"
// @Failure 404 {object} util.ErrorBody "作业不存在"
// @Router /api/assignments/{id}/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	list, err := c.QuestionService.List(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Description 部分更新，未提供的字段保持不变；提供 mediaIds 时替换关联媒体
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Param request body model.QuestionUpdateRequest true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.QuestionDTO} "成功"
// @Failure 404 {object} util.ErrorBody "题目不存在"
// @Failure 422 {object} util.ErrorBody "校验失败"
// @Router /api/questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	var req model.QuestionUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuestionService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req, util.GetTranslator(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 题目管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.ErrorBody "题目不存在"
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.QuestionService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ReorderQuestions godoc
// @Summary 调整题目顺序
// @Description 在一个事务中写入所有题目的新顺序
// @Tags 题目管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "作业ID"
// @Param request body model.ReorderRequest true "题目顺序"
// @Success 200 {object} util.Response "成功"
// @Failure 422 {object} util.ErrorBody "存在不属于该作业或重复的题目"
// @Router /api/assignments/{id}/questions/reorder [put]
func (c *QuestionController) ReorderQuestions(ctx *gin.Context) {
	var req model.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuestionService.Reorder(util.GetUserFromContext(ctx), ctx.Param("id"), req, util.GetTranslator(ctx)); err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
