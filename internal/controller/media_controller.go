package controller

import (
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/service"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/internal/validation"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipart 头部和表单字段的余量
const multipartOverhead = 1 << 20

type MediaController struct {
	MediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{MediaService: mediaService}
}

// UploadMedia godoc
// @Summary 上传媒体文件
// @Description 上传图片、音频或视频，按实际内容判断类型并校验大小
// @Tags 媒体管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "文件"
// @Param type formData string false "声明的媒体类型 image/audio/video"
// @Success 201 {object} util.Response{data=model.MediaAttachment} "上传成功"
// @Failure 400 {object} util.ErrorBody "缺少文件"
// @Failure 413 {object} util.ErrorBody "文件过大"
// @Failure 422 {object} util.ErrorBody "文件类型或大小不符合要求"
// @Router /api/media/upload [post]
func (c *MediaController) UploadMedia(ctx *gin.Context) {
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

	declared := model.MediaType(ctx.PostForm("type"))
	if declared != "" && !declared.Valid() {
		util.BadRequest(ctx, "type must be image, audio or video")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	user := util.GetUserFromContext(ctx)
	media, err := c.MediaService.Upload(ctx.Request.Context(), user.UserID, service.MediaUpload{
		Filename:     header.Filename,
		Size:         header.Size,
		DeclaredType: declared,
		Body:         file,
	}, util.GetTranslator(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Created(ctx, media.Attachment())
}

// GetMedia godoc
// @Summary 获取媒体访问地址
// @Description 返回带有效期的访问地址
// @Tags 媒体管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "媒体ID"
// @Success 200 {object} util.Response{data=model.PresignedMedia} "成功"
// @Failure 404 {object} util.ErrorBody "媒体不存在"
// @Router /api/media/{id} [get]
func (c *MediaController) GetMedia(ctx *gin.Context) {
	media, err := c.MediaService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, media)
}

// DeleteMedia godoc
// @Summary 删除媒体
// @Tags 媒体管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "媒体ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.ErrorBody "权限不足"
// @Failure 404 {object} util.ErrorBody "媒体不存在"
// @Router /api/media/{id} [delete]
func (c *MediaController) DeleteMedia(ctx *gin.Context) {
	if err := c.MediaService.Delete(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		renderError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
