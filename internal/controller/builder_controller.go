package controller

import (
	"baitapvui_backend/internal/builder"
	"baitapvui_backend/internal/client"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/service"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/internal/validation"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BuilderController 题目编辑器接口，每个操作返回完整的编辑器状态
type BuilderController struct {
	BuilderService *service.BuilderService
}

func NewBuilderController(builderService *service.BuilderService) *BuilderController {
	return &BuilderController{BuilderService: builderService}
}

// AddQuestionRequest 新建题目
// swagger:model AddQuestionRequest
type AddQuestionRequest struct {
	Type model.QuestionType `json:"type"`
}

// SetTypeRequest 切换题型
// swagger:model SetTypeRequest
type SetTypeRequest struct {
	Type model.QuestionType `json:"type" binding:"required"`
}

// EditContentRequest 编辑题干
// swagger:model EditContentRequest
type EditContentRequest struct {
	Content string `json:"content"`
}

// MoveRequest 上移或下移一位
// swagger:model MoveRequest
type MoveRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// ReorderRequest 按位置移动题目
// swagger:model BuilderReorderRequest
type ReorderRequest struct {
	From int `json:"from" binding:"min=0"`
	To   int `json:"to" binding:"min=0"`
}

// AddOptionRequest 新增选项
// swagger:model AddOptionRequest
type AddOptionRequest struct {
	Text string `json:"text"`
}

// SetCorrectRequest 设置正确答案
// swagger:model SetCorrectRequest
type SetCorrectRequest struct {
	Correct bool `json:"correct"`
}

// AddOptionResponse 新增选项结果
// swagger:model AddOptionResponse
type AddOptionResponse struct {
	State    model.BuilderState `json:"state"`
	OptionID string             `json:"optionId"`
}

// UploadMediaResponse 上传结果
// swagger:model UploadMediaResponse
type UploadMediaResponse struct {
	State model.BuilderState    `json:"state"`
	Media model.MediaAttachment `json:"media"`
}

// session 按会话头和作业定位编辑器，未携带会话头时每个用户一个会话
const builderSessionKey = "builderSession"

// ResolveSession 校验作业归属并取出当前用户的编辑器会话，未带会话头时每个用户一个默认会话
func (c *BuilderController) ResolveSession(ctx *gin.Context) {
	sessionID := ctx.GetHeader(util.HeaderBuilderSession)
	if sessionID == "" {
		sessionID = "default"
	}
	s, err := c.BuilderService.Open(util.GetUserFromContext(ctx), sessionID, ctx.Param("assignmentId"))
	if err != nil {
		renderError(ctx, err)
		ctx.Abort()
		return
	}
	ctx.Set(builderSessionKey, s)
	ctx.Next()
}

func (c *BuilderController) session(ctx *gin.Context) *builder.Controller {
	return ctx.MustGet(builderSessionKey).(*builder.Controller)
}

// remoteContext 携带调用者令牌访问题目接口
func remoteContext(ctx *gin.Context) context.Context {
	return client.ContextWithToken(ctx.Request.Context(), util.BearerToken(ctx))
}

func respondState(ctx *gin.Context, state model.BuilderState, err error) {
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// GetState godoc
// @Summary 获取编辑器状态
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param X-Builder-Session header string false "编辑器会话"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId} [get]
func (c *BuilderController) GetState(ctx *gin.Context) {
	util.Success(ctx, c.session(ctx).State())
}

// LoadQuestions godoc
// @Summary 加载题目
// @Description 有本地快照时恢复快照，否则从题目接口加载
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Failure 502 {object} util.ErrorBody "后端错误"
// @Failure 503 {object} util.ErrorBody "后端不可达"
// @Router /api/builder/{assignmentId}/load [post]
func (c *BuilderController) LoadQuestions(ctx *gin.Context) {
	state, err := c.session(ctx).LoadQuestions(remoteContext(ctx))
	respondState(ctx, state, err)
}

// ResetBuilder godoc
// @Summary 重置编辑器
// @Description 丢弃未保存的修改与本地快照
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId} [delete]
func (c *BuilderController) ResetBuilder(ctx *gin.Context) {
	util.Success(ctx, c.session(ctx).ResetBuilder(ctx.Request.Context()))
}

// AddQuestion godoc
// @Summary 新建题目
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param request body AddQuestionRequest false "题型，默认选择题"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions [post]
func (c *BuilderController) AddQuestion(ctx *gin.Context) {
	var req AddQuestionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	util.Success(ctx, c.session(ctx).AddQuestion(ctx.Request.Context(), req.Type))
}

// UpdateQuestion godoc
// @Summary 修改题目
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param request body builder.QuestionPatch true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Failure 404 {object} util.ErrorBody "题目不存在"
// @Router /api/builder/{assignmentId}/questions/{localId} [patch]
func (c *BuilderController) UpdateQuestion(ctx *gin.Context) {
	var patch builder.QuestionPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if patch.Type != nil && !patch.Type.Valid() {
		renderError(ctx, builder.ErrInvalidType)
		return
	}

	s := c.session(ctx)
	localID := ctx.Param("localId")
	if _, ok := s.State().Find(localID); !ok {
		renderError(ctx, builder.ErrQuestionNotFound)
		return
	}
	util.Success(ctx, s.UpdateQuestion(ctx.Request.Context(), localID, patch))
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Description 已保存的题目先从后端删除，成功后才从编辑器移除
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Failure 404 {object} util.ErrorBody "题目不存在"
// @Failure 503 {object} util.ErrorBody "后端不可达"
// @Router /api/builder/{assignmentId}/questions/{localId} [delete]
func (c *BuilderController) DeleteQuestion(ctx *gin.Context) {
	state, err := c.session(ctx).DeleteQuestion(remoteContext(ctx), ctx.Param("localId"))
	respondState(ctx, state, err)
}

// SetQuestionType godoc
// @Summary 切换题型
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param request body SetTypeRequest true "题型"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/type [put]
func (c *BuilderController) SetQuestionType(ctx *gin.Context) {
	var req SetTypeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	state, err := c.session(ctx).SetQuestionType(ctx.Request.Context(), ctx.Param("localId"), req.Type)
	respondState(ctx, state, err)
}

// EditContent godoc
// @Summary 编辑题干
// @Description 输入防抖，窗口结束后写入；返回当前状态
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param request body EditContentRequest true "题干"
// @Success 202 {object} util.Response{data=model.BuilderState} "已接收"
// @Router /api/builder/{assignmentId}/questions/{localId}/content [put]
func (c *BuilderController) EditContent(ctx *gin.Context) {
	var req EditContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	s := c.session(ctx)
	if err := s.EditContent(ctx.Param("localId"), req.Content); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, util.Response{Code: http.StatusAccepted, Message: "accepted", Data: s.State()})
}

// MoveQuestion godoc
// @Summary 上移或下移题目
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param request body MoveRequest true "方向"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/move [post]
func (c *BuilderController) MoveQuestion(ctx *gin.Context) {
	var req MoveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	s := c.session(ctx)
	var (
		state model.BuilderState
		err   error
	)
	if req.Direction == "up" {
		state, err = s.MoveQuestionUp(ctx.Request.Context(), ctx.Param("localId"))
	} else {
		state, err = s.MoveQuestionDown(ctx.Request.Context(), ctx.Param("localId"))
	}
	respondState(ctx, state, err)
}

// ReorderQuestions godoc
// @Summary 移动题目位置
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param request body ReorderRequest true "起止位置"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Failure 400 {object} util.ErrorBody "位置越界"
// @Router /api/builder/{assignmentId}/reorder [post]
func (c *BuilderController) ReorderQuestions(ctx *gin.Context) {
	var req ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	state, err := c.session(ctx).ReorderQuestions(ctx.Request.Context(), req.From, req.To)
	respondState(ctx, state, err)
}

// SelectQuestion godoc
// @Summary 选中题目
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/select [post]
func (c *BuilderController) SelectQuestion(ctx *gin.Context) {
	state, err := c.session(ctx).SelectQuestion(ctx.Request.Context(), ctx.Param("localId"))
	respondState(ctx, state, err)
}

// AddOption godoc
// @Summary 新增选项
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param request body AddOptionRequest false "选项内容"
// @Success 200 {object} util.Response{data=AddOptionResponse} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/options [post]
func (c *BuilderController) AddOption(ctx *gin.Context) {
	var req AddOptionRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}
	state, optionID, err := c.session(ctx).AddOption(ctx.Request.Context(), ctx.Param("localId"), req.Text)
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, AddOptionResponse{State: state, OptionID: optionID})
}

// UpdateOption godoc
// @Summary 修改选项
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param optionId path string true "选项ID"
// @Param request body builder.OptionPatch true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/options/{optionId} [patch]
func (c *BuilderController) UpdateOption(ctx *gin.Context) {
	var patch builder.OptionPatch
	if err := ctx.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	state, err := c.session(ctx).UpdateOption(ctx.Request.Context(), ctx.Param("localId"), ctx.Param("optionId"), patch)
	respondState(ctx, state, err)
}

// DeleteOption godoc
// @Summary 删除选项
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param optionId path string true "选项ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/options/{optionId} [delete]
func (c *BuilderController) DeleteOption(ctx *gin.Context) {
	state, err := c.session(ctx).DeleteOption(ctx.Request.Context(), ctx.Param("localId"), ctx.Param("optionId"))
	respondState(ctx, state, err)
}

// SetCorrectOption godoc
// @Summary 设置正确答案
// @Description 设为正确时其余选项自动取消
// @Tags 题目编辑器
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param optionId path string true "选项ID"
// @Param request body SetCorrectRequest true "是否正确"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/options/{optionId}/correct [put]
func (c *BuilderController) SetCorrectOption(ctx *gin.Context) {
	var req SetCorrectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	state, err := c.session(ctx).SetCorrectOption(ctx.Request.Context(), ctx.Param("localId"), ctx.Param("optionId"), req.Correct)
	respondState(ctx, state, err)
}

// UploadMedia godoc
// @Summary 为题目上传媒体
// @Description 本地校验通过后上传，成功后挂到题目上
// @Tags 题目编辑器
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param file formData file true "文件"
// @Success 200 {object} util.Response{data=UploadMediaResponse} "成功"
// @Failure 422 {object} util.ErrorBody "文件类型或大小不符合要求"
// @Router /api/builder/{assignmentId}/questions/{localId}/media [post]
func (c *BuilderController) UploadMedia(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, validation.MaxUploadBytes+multipartOverhead)

	header, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			util.Error(ctx, http.StatusRequestEntityTooLarge, util.CodeTooLarge, "File too large")
			return
		}
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	state, media, err := c.session(ctx).UploadMedia(remoteContext(ctx), ctx.Param("localId"), builder.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, UploadMediaResponse{State: state, Media: media})
}

// DeleteMedia godoc
// @Summary 删除题目媒体
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Param mediaId path string true "媒体ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Router /api/builder/{assignmentId}/questions/{localId}/media/{mediaId} [delete]
func (c *BuilderController) DeleteMedia(ctx *gin.Context) {
	state, err := c.session(ctx).DeleteMedia(remoteContext(ctx), ctx.Param("localId"), ctx.Param("mediaId"))
	respondState(ctx, state, err)
}

// SaveQuestion godoc
// @Summary 保存题目
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Param localId path string true "题目本地ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Failure 422 {object} util.ErrorBody "校验失败"
// @Router /api/builder/{assignmentId}/questions/{localId}/save [post]
func (c *BuilderController) SaveQuestion(ctx *gin.Context) {
	state, err := c.session(ctx).SaveQuestion(remoteContext(ctx), ctx.Param("localId"))
	respondState(ctx, state, err)
}

// SaveAllQuestions godoc
// @Summary 保存全部题目
// @Description 按顺序逐个保存未保存的题目，再提交一次顺序
// @Tags 题目编辑器
// @Produce json
// @Security BearerAuth
// @Param assignmentId path string true "作业ID"
// @Success 200 {object} util.Response{data=model.BuilderState} "成功"
// @Failure 422 {object} util.ErrorBody "校验失败"
// @Router /api/builder/{assignmentId}/save [post]
func (c *BuilderController) SaveAllQuestions(ctx *gin.Context) {
	state, err := c.session(ctx).SaveAllQuestions(remoteContext(ctx))
	respondState(ctx, state, err)
}
