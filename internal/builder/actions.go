package builder

import "baitapvui_backend/internal/model"

// Action Reduce 可处理的状态变更
type Action interface {
	isAction()
}

// QuestionPatch 题目的部分更新，nil 字段保持不变
type QuestionPatch struct {
	Type    *model.QuestionType `json:"type,omitempty"`
	Content *string             `json:"content,omitempty"`
	Options []model.Option      `json:"options,omitempty"`
}

type OptionPatch struct {
	Text      *string `json:"text,omitempty"`
	IsCorrect *bool   `json:"isCorrect,omitempty"`
}

type (
	AddQuestion struct {
		LocalID string
		Type    model.QuestionType
	}
	UpdateQuestion struct {
		LocalID string
		Patch   QuestionPatch
	}
	RemoveQuestion struct{ LocalID string }
	// MoveQuestion 把 From 位置的题目移到 To
	MoveQuestion struct{ From, To int }
	// ShiftQuestion 按 Delta 移动题目，越界时不变
	ShiftQuestion struct {
		LocalID string
		Delta   int
	}
	SetQuestionType struct {
		LocalID string
		Type    model.QuestionType
	}
	AddOption struct {
		LocalID  string
		OptionID string
		Text     string
	}
	UpdateOption struct {
		LocalID  string
		OptionID string
		Patch    OptionPatch
	}
	DeleteOption struct{ LocalID, OptionID string }
	SetCorrectOption struct {
		LocalID  string
		OptionID string
		Correct  bool
	}
	AttachMedia struct {
		LocalID string
		Media   model.MediaAttachment
	}
	DetachMedia    struct{ LocalID, MediaID string }
	SelectQuestion struct{ LocalID string }
	// MarkSaved 记录后端已确认的创建或更新，仅当读取 Revision 后题目未再修改时才置 IsSaved
	MarkSaved struct {
		LocalID   string
		BackendID string
		Revision  uint64
	}
	// MarkClean 所有题目都已保存时清除 dirty 标记
	MarkClean   struct{}
	Load        struct{ State model.BuilderState }
	Reset       struct{}
	SetLoading  struct{ Loading bool }
	SetError    struct{ Message string }
)

func (AddQuestion) isAction()      {}
func (UpdateQuestion) isAction()   {}
func (RemoveQuestion) isAction()   {}
func (MoveQuestion) isAction()     {}
func (ShiftQuestion) isAction()    {}
func (SetQuestionType) isAction()  {}
func (AddOption) isAction()        {}
func (UpdateOption) isAction()     {}
func (DeleteOption) isAction()     {}
func (SetCorrectOption) isAction() {}
func (AttachMedia) isAction()      {}
func (DetachMedia) isAction()      {}
func (SelectQuestion) isAction()   {}
func (MarkSaved) isAction()        {}
func (MarkClean) isAction()        {}
func (Load) isAction()             {}
func (Reset) isAction()            {}
func (SetLoading) isAction()       {}
func (SetError) isAction()         {}
