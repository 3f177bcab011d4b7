// Package validation 题目编辑器与题目接口共用的校验规则
package validation

import (
	"errors"
	"strconv"
	"strings"

	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"
)

// Issue 一条未通过的规则，Key 为 i18n 消息键
type Issue struct {
	Field  string
	Key    string
	Params []string
}

type Result struct {
	Issues []Issue
}

func (r Result) Valid() bool { return len(r.Issues) == 0 }

func (r Result) Has(key string) bool {
	for _, is := range r.Issues {
		if is.Key == key {
			return true
		}
	}
	return false
}

func (r Result) Messages(tr *i18n.Translator) []string {
	msgs := make([]string, 0, len(r.Issues))
	for _, is := range r.Issues {
		msgs = append(msgs, tr.T(is.Key, is.Params...))
	}
	return msgs
}

func (r Result) FieldErrors(tr *i18n.Translator) []util.FieldError {
	flds := make([]util.FieldError, 0, len(r.Issues))
	for _, is := range r.Issues {
		flds = append(flds, util.FieldError{Field: is.Field, Message: tr.T(is.Key, is.Params...)})
	}
	return flds
}

// Err 校验通过返回 nil，否则返回合并所有问题的 *util.ValidationError
func (r Result) Err(tr *i18n.Translator) error {
	if r.Valid() {
		return nil
	}
	return util.NewValidationError(errors.New(strings.Join(r.Messages(tr), "; ")), r.FieldErrors(tr)...)
}

func (r *Result) add(field, key string, params ...string) {
	r.Issues = append(r.Issues, Issue{Field: field, Key: key, Params: params})
}

// ValidateQuestion 校验单个题目：所有题型都需要题干，选择题还需要有内容的选项和正确答案
func ValidateQuestion(qType model.QuestionType, content string, options []model.Option) Result {
	var r Result
	if !qType.Valid() {
		r.add("type", i18n.QuestionTypeInvalid)
	}
	if strings.TrimSpace(content) == "" {
		r.add("content", i18n.QuestionContentRequired)
	}
	if qType != model.QuestionMultipleChoice {
		return r
	}

	if len(options) == 0 {
		r.add("options", i18n.QuestionOptionsRequired)
	}
	hasCorrect := false
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			r.add("options["+strconv.Itoa(i)+"].text", i18n.QuestionOptionTextRequired, OptionLabel(i))
		}
		if opt.IsCorrect {
			hasCorrect = true
		}
	}
	if !hasCorrect {
		r.add("options", i18n.QuestionCorrectRequired)
	}
	return r
}

// OptionLabel 前 26 个选项为 A、B、C…，之后用数字
func OptionLabel(i int) string {
	if i >= 0 && i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}
