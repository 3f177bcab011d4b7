package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/util"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	vi_translations "github.com/go-playground/validator/v10/translations/vi"
)

type Mode int

const (
	ModeDraft Mode = iota
	ModePublish
)

// AssignmentForm 创建向导中填写的作业草稿
type AssignmentForm struct {
	Title         string `json:"title" validate:"required,min=3,max=200"`
	Description   string `json:"description" validate:"max=5000"`
	DueDate       string `json:"dueDate" validate:"omitempty,duedate,notpast"`
	ClassID       string `json:"classId"`
	QuestionCount int    `json:"questionCount"`
}

type ctxKey int

const (
	ctxMode ctxKey = iota
	ctxNow
)

// 自定义校验标签
const (
	dueDateTag      = "duedate"
	notPastTag      = "notpast"
	publishClassTag = "publish_class"
	publishQsTag    = "publish_questions"
)

var dueDateLayouts = []string{time.RFC3339, "2006-01-02T15:04", util.TimeFormat, util.DateFormat}

// ParseDueDate 支持 RFC3339、datetime-local 与纯日期，纯日期取当天结束时刻
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			continue
		}
		if layout == util.DateFormat {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	return time.Time{}, errors.New("invalid due date: " + s)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// 错误字段使用 JSON 名称
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(dueDateTag, func(fl validator.FieldLevel) bool {
		_, err := ParseDueDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidationCtx(notPastTag, func(ctx context.Context, fl validator.FieldLevel) bool {
		due, err := ParseDueDate(fl.Field().String())
		if err != nil {
			return false
		}
		return !due.Before(nowFrom(ctx))
	})
	v.RegisterStructValidationCtx(assignmentStructValidation, AssignmentForm{})

	for _, lang := range i18n.Supported {
		trans := i18n.New(lang).UT()
		switch lang {
		case i18n.LangVI:
			_ = vi_translations.RegisterDefaultTranslations(v, trans)
		default:
			_ = en_translations.RegisterDefaultTranslations(v, trans)
		}
		registerCustomTranslation(v, trans, dueDateTag, i18n.AssignmentDueDateInvalid)
		registerCustomTranslation(v, trans, notPastTag, i18n.AssignmentDueDatePast)
		registerCustomTranslation(v, trans, publishClassTag, i18n.AssignmentClassRequired)
		registerCustomTranslation(v, trans, publishQsTag, i18n.AssignmentQuestionsRequired)
	}
	return v
}

// registerCustomTranslation 把校验标签映射到 i18n 消息键
func registerCustomTranslation(v *validator.Validate, trans ut.Translator, tag, key string) {
	_ = v.RegisterTranslation(
		tag, trans,
		func(ut.Translator) error { return nil },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(key)
			if err != nil {
				return key
			}
			return s
		},
	)
}

// assignmentStructValidation 发布时才需要的校验
func assignmentStructValidation(ctx context.Context, sl validator.StructLevel) {
	form := sl.Current().Interface().(AssignmentForm)
	if modeFrom(ctx) != ModePublish {
		return
	}
	if strings.TrimSpace(form.ClassID) == "" {
		sl.ReportError(form.ClassID, "classId", "ClassID", publishClassTag, "")
	}
	if form.QuestionCount < 1 {
		sl.ReportError(form.QuestionCount, "questions", "QuestionCount", publishQsTag, "")
	}
}

func modeFrom(ctx context.Context) Mode {
	if m, ok := ctx.Value(ctxMode).(Mode); ok {
		return m
	}
	return ModeDraft
}

func nowFrom(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ctxNow).(time.Time); ok {
		return t
	}
	return time.Now()
}

// ValidateAssignment 按模式校验作业，失败时返回带翻译字段信息的 *util.ValidationError
func ValidateAssignment(form AssignmentForm, mode Mode, now time.Time, tr *i18n.Translator) error {
	if tr == nil {
		tr = i18n.English
	}
	form.Title = strings.TrimSpace(form.Title)
	form.Description = strings.TrimSpace(form.Description)

	ctx := context.WithValue(context.Background(), ctxMode, mode)
	ctx = context.WithValue(ctx, ctxNow, now)

	err := validate.StructCtx(ctx, form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	flds := make([]util.FieldError, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(tr.UT())
		flds = append(flds, util.FieldError{Field: fe.Field(), Message: msg})
		msgs = append(msgs, msg)
	}
	return util.NewValidationError(errors.New(strings.Join(msgs, "; ")), flds...)
}
