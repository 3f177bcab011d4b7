package builder

import (
	"errors"
	"strings"

	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/validation"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrMediaNotFound    = errors.New("media not found")
	ErrInvalidMove      = errors.New("question index out of range")
	ErrInvalidType      = errors.New("invalid question type")
)

// ValidationError 题目或文件未通过本地校验，未发出网络请求
type ValidationError struct {
	LocalID string
	Result  validation.Result
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Result.Messages(i18n.English), "; ")
}

// Localize 按调用方语言输出错误
func (e *ValidationError) Localize(tr *i18n.Translator) error {
	return e.Result.Err(tr)
}
