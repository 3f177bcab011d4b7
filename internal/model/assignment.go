package model

import "time"

type AssignmentStatus string

const (
	AssignmentDraft     AssignmentStatus = "draft"
	AssignmentPublished AssignmentStatus = "published"
)

// swagger:model Assignment
type Assignment struct {
	UUIDBase
	Title       string           `gorm:"size:200;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	ClassID     string           `gorm:"size:36;index" json:"classId,omitempty"`
	DueDate     *time.Time       `json:"dueDate,omitempty"`
	Status      AssignmentStatus `gorm:"size:20;default:'draft'" json:"status"`
	CreatorID   uint             `gorm:"index;type:bigint unsigned" json:"creatorId"`
	PublishedAt *time.Time       `json:"publishedAt,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) IsPublished() bool {
	return a.Status == AssignmentPublished
}

// AssignmentRequest 作业草稿的创建与更新请求体
type AssignmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	ClassID     string `json:"classId"`
}
