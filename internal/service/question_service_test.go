package service

import (
	"testing"

	"baitapvui_backend/internal/i18n"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/testutil"
	"baitapvui_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	teacher = &util.Claims{UserID: 1, Role: model.Teacher}
	other   = &util.Claims{UserID: 2, Role: model.Teacher}
	admin   = &util.Claims{UserID: 99, Role: model.Admin}
)

func newQuestionService(t *testing.T) (*QuestionService, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	return NewQuestionService(repository.NewAssignmentRepository(db), repository.NewQuestionRepository(db)), db
}

func mcRequest(content string, order int) model.QuestionRequest {
	return model.QuestionRequest{
		Type:    model.QuestionMultipleChoice,
		Content: content,
		Order:   order,
		Options: []model.Option{{Text: "3"}, {Text: "4", IsCorrect: true}},
	}
}

func TestQuestionServiceCreate(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)
	m := testutil.CreateMedia(t, db, teacher.UserID)

	req := mcRequest("2 + 2 = ?", 0)
	req.MediaIDs = []string{m.ID}
	q, err := svc.Create(teacher, a.ID, req, i18n.English)
	require.NoError(t, err)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, a.ID, q.AssignmentID)
	require.Len(t, q.Options, 2)
	for _, o := range q.Options {
		assert.NotEmpty(t, o.ID, "missing option ids are generated")
	}
	require.Len(t, q.Media, 1)
	assert.Equal(t, m.ID, q.Media[0].ID)
}

func TestQuestionServiceCreateRejectsInvalid(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)

	req := mcRequest("  ", 0)
	req.Options = []model.Option{{Text: "a"}}
	_, err := svc.Create(teacher, a.ID, req, i18n.New(i18n.LangVI))

	ve, ok := util.AsValidationError(err)
	require.True(t, ok, "got %v", err)
	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "Nội dung câu hỏi không được để trống", fields["content"])
	assert.Contains(t, fields, "options")

	list, err := svc.List(teacher, a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestQuestionServicePermissions(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)

	_, err := svc.Create(other, a.ID, mcRequest("q", 0), i18n.English)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.Create(admin, a.ID, mcRequest("q", 0), i18n.English)
	assert.NoError(t, err)

	_, err = svc.Create(teacher, "missing", mcRequest("q", 0), i18n.English)
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)

	_, err = svc.List(other, a.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestQuestionServicePublishedIsReadOnly(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)
	q, err := svc.Create(teacher, a.ID, mcRequest("q", 0), i18n.English)
	require.NoError(t, err)

	require.NoError(t, db.Model(a).Update("status", model.AssignmentPublished).Error)

	_, err = svc.Create(teacher, a.ID, mcRequest("q2", 1), i18n.English)
	assert.ErrorIs(t, err, util.ErrAssignmentPublished)
	assert.ErrorIs(t, svc.Delete(teacher, q.ID), util.ErrAssignmentPublished)
}

func TestQuestionServiceMediaErrorsAreFieldErrors(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)
	m := testutil.CreateMedia(t, db, teacher.UserID)

	req := mcRequest("q", 0)
	req.MediaIDs = []string{m.ID}
	_, err := svc.Create(teacher, a.ID, req, i18n.English)
	require.NoError(t, err)

	_, err = svc.Create(teacher, a.ID, req, i18n.English)
	ve, ok := util.AsValidationError(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "mediaIds", ve.Fields[0].Field)
	assert.Equal(t, "Media "+m.ID+" is attached to another question", ve.Fields[0].Message)

	req.MediaIDs = []string{"nope"}
	_, err = svc.Create(teacher, a.ID, req, i18n.English)
	ve, ok = util.AsValidationError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "Media nope does not exist", ve.Fields[0].Message)
}

func TestQuestionServicePartialUpdate(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)
	q, err := svc.Create(teacher, a.ID, mcRequest("before", 0), i18n.English)
	require.NoError(t, err)

	content := "after"
	got, err := svc.Update(teacher, q.ID, model.QuestionUpdateRequest{Content: &content}, i18n.English)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Content)
	assert.Equal(t, q.Options, got.Options, "options untouched")

	essay := model.QuestionEssay
	got, err = svc.Update(teacher, q.ID, model.QuestionUpdateRequest{Type: &essay}, i18n.English)
	require.NoError(t, err)
	assert.Equal(t, model.QuestionEssay, got.Type)

	mc := model.QuestionMultipleChoice
	empty := []model.Option{}
	_, err = svc.Update(teacher, q.ID, model.QuestionUpdateRequest{Type: &mc, Options: &empty}, i18n.English)
	_, ok := util.AsValidationError(err)
	assert.True(t, ok, "merged question is validated, got %v", err)

	_, err = svc.Update(teacher, "missing", model.QuestionUpdateRequest{Content: &content}, i18n.English)
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
}

func TestQuestionServiceDeleteCompactsOrder(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)
	var ids []string
	for i := 0; i < 3; i++ {
		q, err := svc.Create(teacher, a.ID, mcRequest("q", i), i18n.English)
		require.NoError(t, err)
		ids = append(ids, q.ID)
	}

	require.NoError(t, svc.Delete(teacher, ids[0]))
	list, err := svc.List(teacher, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[1], list[0].ID)
	assert.Equal(t, 0, list[0].Order)
	assert.Equal(t, 1, list[1].Order)

	assert.ErrorIs(t, svc.Delete(teacher, ids[0]), util.ErrQuestionNotFound)
}

func TestQuestionServiceReorder(t *testing.T) {
	svc, db := newQuestionService(t)
	a := testutil.CreateAssignment(t, db, teacher.UserID)
	q0, err := svc.Create(teacher, a.ID, mcRequest("first", 0), i18n.English)
	require.NoError(t, err)
	q1, err := svc.Create(teacher, a.ID, mcRequest("second", 1), i18n.English)
	require.NoError(t, err)

	err = svc.Reorder(teacher, a.ID, model.ReorderRequest{Questions: []model.QuestionOrder{
		{ID: q1.ID, Order: 0}, {ID: q0.ID, Order: 1},
	}}, i18n.English)
	require.NoError(t, err)

	list, err := svc.List(teacher, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{q1.ID, q0.ID}, []string{list[0].ID, list[1].ID})

	err = svc.Reorder(teacher, a.ID, model.ReorderRequest{Questions: []model.QuestionOrder{
		{ID: q0.ID, Order: 0}, {ID: "ghost", Order: 1}, {ID: q0.ID, Order: 2},
	}}, i18n.English)
	ve, ok := util.AsValidationError(err)
	require.True(t, ok, "got %v", err)
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "questions[1].id", ve.Fields[0].Field)
	assert.Equal(t, "questions[2].id", ve.Fields[1].Field)

	list, err = svc.List(teacher, a.ID)
	require.NoError(t, err)
	assert.Equal(t, q1.ID, list[0].ID, "rejected reorder writes nothing")
}
