package repository

import (
	"time"

	"baitapvui_backend/internal/model"

	"gorm.io/gorm"
)

type MediaRepository struct {
	DB *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{DB: db}
}

func (r *MediaRepository) Create(m *model.Media) error {
	return r.DB.Create(m).Error
}

func (r *MediaRepository) FindByID(id string) (*model.Media, error) {
	var m model.Media
	err := r.DB.Where("id = ?", id).First(&m).Error
	return &m, err
}

// Delete 永久删除记录，对象存储中的文件已一并删除
func (r *MediaRepository) Delete(id string) error {
	return r.DB.Unscoped().Delete(&model.Media{}, "id = ?", id).Error
}

// FindOrphans 未挂到任何题目且早于 cutoff 创建的媒体
func (r *MediaRepository) FindOrphans(cutoff time.Time, limit int) ([]*model.Media, error) {
	var list []*model.Media
	err := r.DB.Where("question_id IS NULL AND created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
