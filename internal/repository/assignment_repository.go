package repository

import (
	"baitapvui_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.DB.Create(a).Error
}

func (r *AssignmentRepository) FindByID(id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.Where("id = ?", id).First(&a).Error
	return &a, err
}

func (r *AssignmentRepository) FindByCreator(creatorID uint) ([]*model.Assignment, error) {
	var list []*model.Assignment
	err := r.DB.Where("creator_id = ?", creatorID).Order("updated_at DESC").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) Update(a *model.Assignment) error {
	return r.DB.Save(a).Error
}

func (r *AssignmentRepository) CountQuestions(assignmentID string) (int64, error) {
	var n int64
	err := r.DB.Model(&model.AssignmentQuestion{}).Where("assignment_id = ?", assignmentID).Count(&n).Error
	return n, err
}
