package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// AssignmentQuestion 题目的持久化模型
// swagger:model AssignmentQuestion
type AssignmentQuestion struct {
	UUIDBase
	AssignmentID string         `gorm:"index;type:varchar(36);not null" json:"assignmentId"`
	Type         QuestionType   `gorm:"size:32;not null" json:"type"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Order        int            `gorm:"column:sort_order;default:0" json:"order"`
	Options      datatypes.JSON `json:"options"` // JSON: []Option
	Media        []Media        `gorm:"foreignKey:QuestionID" json:"media,omitempty"`
}

func (AssignmentQuestion) TableName() string {
	return "assignment_questions"
}

func (q *AssignmentQuestion) DecodeOptions() ([]Option, error) {
	opts := []Option{}
	if len(q.Options) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []Option{}
	}
	return opts, nil
}

func (q *AssignmentQuestion) EncodeOptions(opts []Option) error {
	if opts == nil {
		opts = []Option{}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = datatypes.JSON(b)
	return nil
}

// QuestionDTO REST 接口中题目的传输结构
// swagger:model QuestionDTO
type QuestionDTO struct {
	ID           string            `json:"id"`
	AssignmentID string            `json:"assignmentId"`
	Type         QuestionType      `json:"type"`
	Content      string            `json:"content"`
	Order        int               `json:"order"`
	Options      []Option          `json:"options"`
	Media        []MediaAttachment `json:"media"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (q *AssignmentQuestion) ToDTO() (QuestionDTO, error) {
	opts, err := q.DecodeOptions()
	if err != nil {
		return QuestionDTO{}, err
	}
	media := make([]MediaAttachment, 0, len(q.Media))
	for i := range q.Media {
		media = append(media, q.Media[i].Attachment())
	}
	return QuestionDTO{
		ID:           q.ID,
		AssignmentID: q.AssignmentID,
		Type:         q.Type,
		Content:      q.Content,
		Order:        q.Order,
		Options:      opts,
		Media:        media,
		UpdatedAt:    q.UpdatedAt,
	}, nil
}

// QuestionRequest 创建题目请求体
type QuestionRequest struct {
	Type     QuestionType `json:"type" binding:"required,oneof=multiple_choice essay"`
	Content  string       `json:"content"`
	Order    int          `json:"order" binding:"min=0"`
	Options  []Option     `json:"options,omitempty"`
	MediaIDs []string     `json:"mediaIds,omitempty"`
}

// QuestionUpdateRequest 部分更新请求体，nil 字段保持不变
type QuestionUpdateRequest struct {
	Type     *QuestionType `json:"type,omitempty" binding:"omitempty,oneof=multiple_choice essay"`
	Content  *string       `json:"content,omitempty"`
	Order    *int          `json:"order,omitempty" binding:"omitempty,min=0"`
	Options  *[]Option     `json:"options,omitempty"`
	MediaIDs *[]string     `json:"mediaIds,omitempty"`
}

type QuestionOrder struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order" binding:"min=0"`
}

type ReorderRequest struct {
	Questions []QuestionOrder `json:"questions" binding:"required,dive"`
}
