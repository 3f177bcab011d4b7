package service

import (
	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/internal/validation"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionService struct {
	AssignmentRepo *repository.AssignmentRepository
	QuestionRepo   *repository.QuestionRepository
}

func NewQuestionService(assignmentRepo *repository.AssignmentRepository, questionRepo *repository.QuestionRepository) *QuestionService {
	return &QuestionService{AssignmentRepo: assignmentRepo, QuestionRepo: questionRepo}
}

// editableAssignment 加载作业并检查编辑权限
func (s *QuestionService) editableAssignment(user *util.Claims, assignmentID string) (*model.Assignment, error) {
	a, err := s.AssignmentRepo.FindByID(assignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canManage(user, a.CreatorID) {
		return nil, util.ErrPermissionDenied
	}
	if a.IsPublished() {
		return nil, util.ErrAssignmentPublished
	}
	return a, nil
}

func (s *QuestionService) findQuestion(id string) (*model.AssignmentQuestion, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

// normalizeOptions 为缺少 id 的选项生成 id
func normalizeOptions(opts []model.Option) []model.Option {
	out := make([]model.Option, len(opts))
	for i, o := range opts {
		if o.ID == "" {
			o.ID = uuid.New().String()
		}
		out[i] = o
	}
	return out
}

// mediaError 把附件错误转换为字段错误
func mediaError(err error, mediaIDs []string, tr *i18n.Translator) error {
	key := ""
	switch {
	case errors.Is(err, util.ErrMediaNotFound):
		key = i18n.MediaNotFound
	case errors.Is(err, util.ErrMediaAlreadyAttached):
		key = i18n.MediaAlreadyAttached
	default:
		return err
	}
	msg := tr.T(key, strings.Join(mediaIDs, ", "))
	return util.NewValidationError(errors.New(msg), util.FieldError{Field: "mediaIds", Message: msg})
}

func (s *QuestionService) Create(user *util.Claims, assignmentID string, req model.QuestionRequest, tr *i18n.Translator) (*model.QuestionDTO, error) {
	if _, err := s.editableAssignment(user, assignmentID); err != nil {
		return nil, err
	}
	if err := validation.ValidateQuestion(req.Type, req.Content, req.Options).Err(tr); err != nil {
		return nil, err
	}

	q := &model.AssignmentQuestion{
		AssignmentID: assignmentID,
		Type:         req.Type,
		Content:      req.Content,
		Order:        req.Order,
	}
	if err := q.EncodeOptions(normalizeOptions(req.Options)); err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.Create(q, req.MediaIDs); err != nil {
		return nil, mediaError(err, req.MediaIDs, tr)
	}
	return s.dto(q.ID)
}

func (s *QuestionService) dto(id string) (*model.QuestionDTO, error) {
	q, err := s.findQuestion(id)
	if err != nil {
		return nil, err
	}
	dto, err := q.ToDTO()
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *QuestionService) List(user *util.Claims, assignmentID string) ([]model.QuestionDTO, error) {
	a, err := s.AssignmentRepo.FindByID(assignmentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if !canManage(user, a.CreatorID) {
		return nil, util.ErrPermissionDenied
	}

	list, err := s.QuestionRepo.FindByAssignment(assignmentID)
	if err != nil {
		return nil, err
	}
	out := make([]model.QuestionDTO, 0, len(list))
	for _, q := range list {
		dto, err := q.ToDTO()
		if err != nil {
			return nil, fmt.Errorf("question %s: %w", q.ID, err)
		}
		out = append(out, dto)
	}
	return out, nil
}

// Update 部分更新，合并后整体校验
func (s *QuestionService) Update(user *util.Claims, id string, req model.QuestionUpdateRequest, tr *i18n.Translator) (*model.QuestionDTO, error) {
	q, err := s.findQuestion(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.editableAssignment(user, q.AssignmentID); err != nil {
		return nil, err
	}

	opts, err := q.DecodeOptions()
	if err != nil {
		return nil, err
	}
	if req.Type != nil {
		q.Type = *req.Type
	}
	if req.Content != nil {
		q.Content = *req.Content
	}
	if req.Order != nil {
		q.Order = *req.Order
	}
	if req.Options != nil {
		opts = normalizeOptions(*req.Options)
	}
	if err := validation.ValidateQuestion(q.Type, q.Content, opts).Err(tr); err != nil {
		return nil, err
	}
	if err := q.EncodeOptions(opts); err != nil {
		return nil, err
	}

	if err := s.QuestionRepo.Update(q, req.MediaIDs); err != nil {
		var ids []string
		if req.MediaIDs != nil {
			ids = *req.MediaIDs
		}
		return nil, mediaError(err, ids, tr)
	}
	return s.dto(q.ID)
}

// Delete 删除题目，附件解除关联后由清理任务回收
func (s *QuestionService) Delete(user *util.Claims, id string) error {
	q, err := s.findQuestion(id)
	if err != nil {
		return err
	}
	if _, err := s.editableAssignment(user, q.AssignmentID); err != nil {
		return err
	}
	return s.QuestionRepo.Delete(q)
}

// Reorder 在一个事务中写入新的顺序，所有 id 必须属于该作业
func (s *QuestionService) Reorder(user *util.Claims, assignmentID string, req model.ReorderRequest, tr *i18n.Translator) error {
	if _, err := s.editableAssignment(user, assignmentID); err != nil {
		return err
	}
	existing, err := s.QuestionRepo.FindByAssignment(assignmentID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, q := range existing {
		known[q.ID] = true
	}

	var fields []util.FieldError
	seen := make(map[string]bool, len(req.Questions))
	for i, o := range req.Questions {
		field := "questions[" + strconv.Itoa(i) + "].id"
		switch {
		case !known[o.ID]:
			fields = append(fields, util.FieldError{Field: field, Message: tr.T(i18n.QuestionReorderUnknown, o.ID)})
		case seen[o.ID]:
			fields = append(fields, util.FieldError{Field: field, Message: tr.T(i18n.QuestionReorderDuplicate, o.ID)})
		}
		seen[o.ID] = true
	}
	if len(fields) > 0 {
		return util.NewValidationError(errors.New(fields[0].Message), fields...)
	}
	return s.QuestionRepo.Reorder(assignmentID, req.Questions)
}
