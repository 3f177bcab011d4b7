// Package i18n 提供按请求绑定的翻译器。进程内没有全局的当前语言，
// 调用方自行构造 *Translator 并向下传递
package i18n

import (
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/vi"
	ut "github.com/go-playground/universal-translator"
)

const (
	LangEN = "en"
	LangVI = "vi"
)

var Supported = []string{LangEN, LangVI}

// 消息键
const (
	QuestionContentRequired      = "question.content.required"
	QuestionTypeInvalid          = "question.type.invalid"
	QuestionOptionsRequired      = "question.options.required"
	QuestionOptionTextRequired   = "question.options.text_required"
	QuestionCorrectRequired      = "question.options.correct_required"
	MediaTypeUnsupported         = "media.type.unsupported"
	MediaTooLarge                = "media.size.exceeded"
	MediaEmpty                   = "media.size.empty"
	AssignmentDueDateInvalid     = "assignment.due_date.invalid"
	AssignmentDueDatePast        = "assignment.due_date.past"
	AssignmentClassRequired      = "assignment.class.required"
	AssignmentQuestionsRequired  = "assignment.questions.required"
	BuilderQuestionNotFound      = "builder.question.not_found"
	BuilderBackendUnreachable    = "builder.backend.unreachable"
	BuilderBackendError          = "builder.backend.error"
	BuilderValidationFailed      = "builder.validation.failed"
	BuilderBackendThrottled      = "builder.backend.throttled"
	QuestionReorderUnknown       = "question.reorder.unknown"
	QuestionReorderDuplicate     = "question.reorder.duplicate"
	MediaNotFound                = "media.not_found"
	MediaAlreadyAttached         = "media.already_attached"
)

var catalogs = map[string]map[string]string{
	LangEN: {
		QuestionContentRequired:      "Question content is required",
		QuestionTypeInvalid:          "Question type must be multiple_choice or essay",
		QuestionOptionsRequired:      "Add at least one option",
		QuestionOptionTextRequired:   "Option {0} must have text",
		QuestionCorrectRequired:      "Select at least one correct answer",
		MediaTypeUnsupported:         "Unsupported file type {0}",
		MediaTooLarge:                "File is too large, {0} files must be at most {1}MB",
		MediaEmpty:                   "File is empty",
		AssignmentDueDateInvalid:     "Due date is not a valid date",
		AssignmentDueDatePast:        "Due date cannot be in the past",
		AssignmentClassRequired:      "Select a class before publishing",
		AssignmentQuestionsRequired:  "Add at least one question before publishing",
		BuilderQuestionNotFound:      "Question not found",
		BuilderBackendUnreachable:    "Cannot reach the server, check your connection and retry",
		BuilderBackendError:          "The server could not process the request, please retry",
		BuilderValidationFailed:      "Please fix the highlighted errors",
		BuilderBackendThrottled:      "Too many requests, please retry in a moment",
		QuestionReorderUnknown:       "Question {0} does not belong to this assignment",
		QuestionReorderDuplicate:     "Question {0} is listed more than once",
		MediaNotFound:                "Media {0} does not exist",
		MediaAlreadyAttached:         "Media {0} is attached to another question",
	},
	LangVI: {
		QuestionContentRequired:      "Nội dung câu hỏi không được để trống",
		QuestionTypeInvalid:          "Loại câu hỏi phải là trắc nghiệm hoặc tự luận",
		QuestionOptionsRequired:      "Cần ít nhất một đáp án",
		QuestionOptionTextRequired:   "Đáp án {0} chưa có nội dung",
		QuestionCorrectRequired:      "Chọn ít nhất một đáp án đúng",
		MediaTypeUnsupported:         "Định dạng tệp {0} không được hỗ trợ",
		MediaTooLarge:                "Tệp quá lớn, tệp {0} tối đa {1}MB",
		MediaEmpty:                   "Tệp rỗng",
		AssignmentDueDateInvalid:     "Hạn nộp không hợp lệ",
		AssignmentDueDatePast:        "Hạn nộp không được ở trong quá khứ",
		AssignmentClassRequired:      "Chọn lớp trước khi giao bài",
		AssignmentQuestionsRequired:  "Cần ít nhất một câu hỏi trước khi giao bài",
		BuilderQuestionNotFound:      "Không tìm thấy câu hỏi",
		BuilderBackendUnreachable:    "Không thể kết nối máy chủ, vui lòng kiểm tra mạng và thử lại",
		BuilderBackendError:          "Máy chủ không xử lý được yêu cầu, vui lòng thử lại",
		BuilderValidationFailed:      "Vui lòng sửa các lỗi được đánh dấu",
		BuilderBackendThrottled:      "Quá nhiều yêu cầu, vui lòng thử lại sau giây lát",
		QuestionReorderUnknown:       "Câu hỏi {0} không thuộc bài tập này",
		QuestionReorderDuplicate:     "Câu hỏi {0} bị lặp lại",
		MediaNotFound:                "Tệp {0} không tồn tại",
		MediaAlreadyAttached:         "Tệp {0} đã được gắn vào câu hỏi khác",
	},
}

var universal = ut.New(en.New(), en.New(), vi.New())

func init() {
	for lang, msgs := range catalogs {
		trans, _ := universal.GetTranslator(lang)
		for key, text := range msgs {
			if err := trans.Add(key, text, false); err != nil {
				panic("i18n: " + lang + " " + key + ": " + err.Error())
			}
		}
	}
}

// Translator 在一次请求内绑定一种语言
type Translator struct {
	lang  string
	trans ut.Translator
}

// New 返回 lang 对应的翻译器，未知语言回退到英文
func New(lang string) *Translator {
	lang = normalize(lang)
	trans, found := universal.GetTranslator(lang)
	if !found {
		lang = LangEN
		trans, _ = universal.GetTranslator(LangEN)
	}
	return &Translator{lang: lang, trans: trans}
}

// FromAcceptLanguage 取 Accept-Language 中第一个支持的语言
func FromAcceptLanguage(header, fallback string) *Translator {
	for _, part := range strings.Split(header, ",") {
		tag := normalize(strings.SplitN(part, ";", 2)[0])
		for _, s := range Supported {
			if tag == s {
				return New(tag)
			}
		}
	}
	return New(fallback)
}

func (t *Translator) Lang() string { return t.lang }

// UT 返回底层翻译器，用于注册校验器翻译
func (t *Translator) UT() ut.Translator { return t.trans }

// T 按位置参数翻译 key，未知 key 先回退英文，再回退为 key 本身
func (t *Translator) T(key string, params ...string) string {
	if t == nil {
		return English.T(key, params...)
	}
	if s, err := t.trans.T(key, params...); err == nil {
		return s
	}
	if t.lang != LangEN {
		return English.T(key, params...)
	}
	return key
}

// English 调用方未提供翻译器时使用的默认翻译器
var English = New(LangEN)

func normalize(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return tag
}
