package service

import (
	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/internal/validation"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

type AssignmentService struct {
	Repo *repository.AssignmentRepository
	Now  func() time.Time
}

func NewAssignmentService(repo *repository.AssignmentRepository) *AssignmentService {
	return &AssignmentService{Repo: repo, Now: time.Now}
}

func formOf(req model.AssignmentRequest) validation.AssignmentForm {
	return validation.AssignmentForm{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		ClassID:     req.ClassID,
	}
}

func applyRequest(a *model.Assignment, req model.AssignmentRequest) error {
	a.Title = strings.TrimSpace(req.Title)
	a.Description = strings.TrimSpace(req.Description)
	a.ClassID = strings.TrimSpace(req.ClassID)
	a.DueDate = nil
	if strings.TrimSpace(req.DueDate) != "" {
		due, err := validation.ParseDueDate(req.DueDate)
		if err != nil {
			return err
		}
		a.DueDate = &due
	}
	return nil
}

// CreateDraft 创建草稿，草稿阶段不要求班级和题目
func (s *AssignmentService) CreateDraft(user *util.Claims, req model.AssignmentRequest, tr *i18n.Translator) (*model.Assignment, error) {
	if err := validation.ValidateAssignment(formOf(req), validation.ModeDraft, s.Now(), tr); err != nil {
		return nil, err
	}
	a := &model.Assignment{Status: model.AssignmentDraft, CreatorID: user.UserID}
	if err := applyRequest(a, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssignmentService) Get(user *util.Claims, id string) (*model.Assignment, error) {
	a, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canManage(user, a.CreatorID) {
		return nil, util.ErrPermissionDenied
	}
	return a, nil
}

func (s *AssignmentService) List(user *util.Claims) ([]*model.Assignment, error) {
	return s.Repo.FindByCreator(user.UserID)
}

func (s *AssignmentService) Update(user *util.Claims, id string, req model.AssignmentRequest, tr *i18n.Translator) (*model.Assignment, error) {
	a, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if a.IsPublished() {
		return nil, util.ErrAssignmentPublished
	}
	if err := validation.ValidateAssignment(formOf(req), validation.ModeDraft, s.Now(), tr); err != nil {
		return nil, err
	}
	if err := applyRequest(a, req); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

// Publish 发布前按发布规则校验：需要班级和至少一道题
func (s *AssignmentService) Publish(user *util.Claims, id string, tr *i18n.Translator) (*model.Assignment, error) {
	a, err := s.Get(user, id)
	if err != nil {
		return nil, err
	}
	if a.IsPublished() {
		return nil, util.ErrAssignmentPublished
	}
	count, err := s.Repo.CountQuestions(a.ID)
	if err != nil {
		return nil, err
	}

	form := validation.AssignmentForm{
		Title:         a.Title,
		Description:   a.Description,
		ClassID:       a.ClassID,
		QuestionCount: int(count),
	}
	if a.DueDate != nil {
		form.DueDate = a.DueDate.Format(time.RFC3339)
	}
	if err := validation.ValidateAssignment(form, validation.ModePublish, s.Now(), tr); err != nil {
		return nil, err
	}

	now := s.Now()
	a.Status = model.AssignmentPublished
	a.PublishedAt = &now
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}
