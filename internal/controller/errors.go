package controller

import (
	"baitapvui_backend/internal/builder"
	"baitapvui_backend/internal/client"
	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/util"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// renderError 按错误类型输出状态码与错误体
func renderError(ctx *gin.Context, err error) {
	tr := util.GetTranslator(ctx)

	var bErr *builder.ValidationError
	if errors.As(err, &bErr) {
		if ve, ok := util.AsValidationError(bErr.Localize(tr)); ok {
			util.ValidationFailed(ctx, tr.T(i18n.BuilderValidationFailed), ve.Fields)
			return
		}
	}
	if ve, ok := util.AsValidationError(err); ok {
		util.ValidationFailed(ctx, ve.Error(), ve.Fields)
		return
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		renderBackendError(ctx, apiErr, tr)
		return
	}

	switch {
	case errors.Is(err, util.ErrAssignmentNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrMediaNotFound):
		util.NotFound(ctx)
	case errors.Is(err, builder.ErrQuestionNotFound):
		util.Error(ctx, http.StatusNotFound, util.CodeNotFound, tr.T(i18n.BuilderQuestionNotFound))
	case errors.Is(err, builder.ErrOptionNotFound),
		errors.Is(err, builder.ErrMediaNotFound):
		util.NotFound(ctx)
	case errors.Is(err, builder.ErrInvalidMove),
		errors.Is(err, builder.ErrInvalidType):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrAssignmentPublished),
		errors.Is(err, util.ErrMediaAlreadyAttached):
		util.Error(ctx, http.StatusConflict, util.CodeConflict, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// renderBackendError 后端拒绝的请求原样透传，限流返回 429，连接失败与服务端故障转换为网关错误
func renderBackendError(ctx *gin.Context, err *client.APIError, tr *i18n.Translator) {
	switch err.Kind {
	case client.KindNetwork:
		util.Error(ctx, http.StatusServiceUnavailable, util.CodeBackendUnreachable, tr.T(i18n.BuilderBackendUnreachable))
	case client.KindThrottled:
		if err.RetryAfter > 0 {
			ctx.Header("Retry-After", strconv.Itoa(int(err.RetryAfter/time.Second)))
		}
		util.Error(ctx, http.StatusTooManyRequests, util.CodeRateLimited, tr.T(i18n.BuilderBackendThrottled))
	case client.KindRejected:
		ctx.JSON(err.Status, util.ErrorBody{Code: err.Code, Message: err.Message, Errors: err.Fields})
	default:
		util.Error(ctx, http.StatusBadGateway, util.CodeBackendError, tr.T(i18n.BuilderBackendError))
	}
}
