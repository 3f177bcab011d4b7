package model

// QuestionType 题目类型
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionEssay          QuestionType = "essay"
)

func (t QuestionType) Valid() bool {
	return t == QuestionMultipleChoice || t == QuestionEssay
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaAudio || t == MediaVideo
}

// Option 选择题的一个选项
// swagger:model Option
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// MediaAttachment 媒体附件，只归属于一道题目
// swagger:model MediaAttachment
type MediaAttachment struct {
	ID       string    `json:"id"`
	Type     MediaType `json:"type"`
	URL      string    `json:"url"`
	Filename string    `json:"filename,omitempty"`
}

// DraftQuestion 构建器中的题目草稿，后端确认前只存在于会话中
// 首次创建成功前 ID 为空；LocalID 不会离开构建器
// swagger:model DraftQuestion
type DraftQuestion struct {
	ID       string            `json:"id,omitempty"`
	LocalID  string            `json:"localId"`
	Type     QuestionType      `json:"type"`
	Content  string            `json:"content"`
	Order    int               `json:"order"`
	Options  []Option          `json:"options"`
	Media    []MediaAttachment `json:"media"`
	IsSaved  bool              `json:"isSaved"`
	Revision uint64            `json:"revision"`
}

// 服务端分配的ID，首次创建前为空
func (q DraftQuestion) BackendID() string { return q.ID }

func (q DraftQuestion) Clone() DraftQuestion {
	c := q
	c.Options = append(make([]Option, 0, len(q.Options)), q.Options...)
	c.Media = append(make([]MediaAttachment, 0, len(q.Media)), q.Media...)
	return c
}

// 按展示顺序排列的附件ID
func (q DraftQuestion) MediaIDs() []string {
	ids := make([]string, 0, len(q.Media))
	for _, m := range q.Media {
		ids = append(ids, m.ID)
	}
	return ids
}

// BuilderState 一个题目构建会话的聚合根
// swagger:model BuilderState
type BuilderState struct {
	AssignmentID      string          `json:"assignmentId"`
	Questions         []DraftQuestion `json:"questions"`
	CurrentQuestionID string          `json:"currentQuestionId,omitempty"`
	IsDirty           bool            `json:"isDirty"`
	IsLoading         bool            `json:"isLoading"`
	Error             string          `json:"error,omitempty"`
}

func NewBuilderState(assignmentID string) BuilderState {
	return BuilderState{
		AssignmentID: assignmentID,
		Questions:    []DraftQuestion{},
	}
}

func (s BuilderState) Clone() BuilderState {
	c := s
	c.Questions = make([]DraftQuestion, len(s.Questions))
	for i, q := range s.Questions {
		c.Questions[i] = q.Clone()
	}
	return c
}

// IndexOf 返回本地ID对应题目的下标，不存在时返回 -1
func (s BuilderState) IndexOf(localID string) int {
	for i, q := range s.Questions {
		if q.LocalID == localID {
			return i
		}
	}
	return -1
}

func (s BuilderState) Find(localID string) (DraftQuestion, bool) {
	if i := s.IndexOf(localID); i >= 0 {
		return s.Questions[i].Clone(), true
	}
	return DraftQuestion{}, false
}

func (s BuilderState) HasUnsaved() bool {
	for _, q := range s.Questions {
		if !q.IsSaved {
			return true
		}
	}
	return false
}
