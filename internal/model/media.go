package model

import "time"

// Media 上传的文件。被题目关联前 QuestionID 为 nil，
// 超过清理时限仍未关联的媒体会被删除
// swagger:model Media
type Media struct {
	UUIDBase
	QuestionID   *string   `gorm:"index;type:varchar(36)" json:"questionId,omitempty"`
	Type         MediaType `gorm:"size:16;not null" json:"type"`
	ObjectKey    string    `gorm:"size:255;not null" json:"-"`
	URL          string    `gorm:"size:512" json:"url"`
	Filename     string    `gorm:"size:255" json:"filename,omitempty"`
	ContentType  string    `gorm:"size:100" json:"contentType"`
	Size         int64     `json:"size"`
	ThumbnailKey string    `gorm:"size:255" json:"-"`
	ThumbnailURL string    `gorm:"size:512" json:"thumbnailUrl,omitempty"`
	Duration     float64   `gorm:"default:0" json:"duration,omitempty"` // seconds, audio/video
	UploaderID   uint      `gorm:"index;type:bigint unsigned" json:"uploaderId"`
}

func (Media) TableName() string {
	return "media"
}

func (m *Media) Attachment() MediaAttachment {
	return MediaAttachment{
		ID:       m.ID,
		Type:     m.Type,
		URL:      m.URL,
		Filename: m.Filename,
	}
}

// PresignedMedia GET /media/{id} 的返回结构
type PresignedMedia struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
