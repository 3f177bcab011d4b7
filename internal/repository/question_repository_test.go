package repository

import (
	"testing"
	"time"

	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/testutil"
	"baitapvui_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuestion(t *testing.T, repo *QuestionRepository, assignmentID string, order int, mediaIDs ...string) *model.AssignmentQuestion {
	t.Helper()
	q := &model.AssignmentQuestion{AssignmentID: assignmentID, Type: model.QuestionEssay, Content: "q", Order: order}
	require.NoError(t, q.EncodeOptions(nil))
	require.NoError(t, repo.Create(q, mediaIDs))
	return q
}

func ordersOf(t *testing.T, repo *QuestionRepository, assignmentID string) map[string]int {
	t.Helper()
	list, err := repo.FindByAssignment(assignmentID)
	require.NoError(t, err)
	out := map[string]int{}
	for _, q := range list {
		out[q.ID] = q.Order
	}
	return out
}

func TestQuestionCreateAttachesMedia(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewQuestionRepository(db)
	a := testutil.CreateAssignment(t, db, 1)
	m := testutil.CreateMedia(t, db, 1)

	q := newQuestion(t, repo, a.ID, 0, m.ID)
	got, err := repo.FindByID(q.ID)
	require.NoError(t, err)
	require.Len(t, got.Media, 1)
	assert.Equal(t, m.ID, got.Media[0].ID)

	err = repo.Create(&model.AssignmentQuestion{AssignmentID: a.ID, Type: model.QuestionEssay, Content: "other"}, []string{m.ID})
	assert.ErrorIs(t, err, util.ErrMediaAlreadyAttached)

	err = repo.Create(&model.AssignmentQuestion{AssignmentID: a.ID, Type: model.QuestionEssay, Content: "other"}, []string{"missing"})
	assert.ErrorIs(t, err, util.ErrMediaNotFound)

	n, err := NewAssignmentRepository(db).CountQuestions(a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "failed creates roll back")
}

func TestQuestionUpdateReplacesMedia(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewQuestionRepository(db)
	a := testutil.CreateAssignment(t, db, 1)
	m1, m2 := testutil.CreateMedia(t, db, 1), testutil.CreateMedia(t, db, 1)
	q := newQuestion(t, repo, a.ID, 0, m1.ID)

	q.Content = "updated"
	ids := []string{m2.ID}
	require.NoError(t, repo.Update(q, &ids))

	got, err := repo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Content)
	require.Len(t, got.Media, 1)
	assert.Equal(t, m2.ID, got.Media[0].ID)

	orphans, err := NewMediaRepository(db).FindOrphans(time.Now().Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, m1.ID, orphans[0].ID)

	require.NoError(t, repo.Update(got, nil))
	got, err = repo.FindByID(q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Media, 1, "nil media ids leave attachments alone")
}

func TestQuestionDeleteCompactsOrder(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewQuestionRepository(db)
	a := testutil.CreateAssignment(t, db, 1)
	m := testutil.CreateMedia(t, db, 1)
	q0 := newQuestion(t, repo, a.ID, 0)
	q1 := newQuestion(t, repo, a.ID, 1, m.ID)
	q2 := newQuestion(t, repo, a.ID, 2)

	require.NoError(t, repo.Delete(q1))
	assert.Equal(t, map[string]int{q0.ID: 0, q2.ID: 1}, ordersOf(t, repo, a.ID))

	_, err := repo.FindByID(q1.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	media, err := NewMediaRepository(db).FindByID(m.ID)
	require.NoError(t, err)
	assert.Nil(t, media.QuestionID)
}

func TestQuestionReorder(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewQuestionRepository(db)
	a := testutil.CreateAssignment(t, db, 1)
	other := testutil.CreateAssignment(t, db, 1)
	q0 := newQuestion(t, repo, a.ID, 0)
	q1 := newQuestion(t, repo, a.ID, 1)
	foreign := newQuestion(t, repo, other.ID, 0)

	require.NoError(t, repo.Reorder(a.ID, []model.QuestionOrder{{ID: q0.ID, Order: 1}, {ID: q1.ID, Order: 0}}))
	assert.Equal(t, map[string]int{q0.ID: 1, q1.ID: 0}, ordersOf(t, repo, a.ID))

	list, err := repo.FindByAssignment(a.ID)
	require.NoError(t, err)
	assert.Equal(t, q1.ID, list[0].ID, "listed by order")

	err = repo.Reorder(a.ID, []model.QuestionOrder{{ID: q0.ID, Order: 0}, {ID: foreign.ID, Order: 1}})
	assert.ErrorIs(t, err, util.ErrQuestionNotFound)
	assert.Equal(t, map[string]int{q0.ID: 1, q1.ID: 0}, ordersOf(t, repo, a.ID), "rolled back")
}

func TestMediaOrphansAndDelete(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := NewMediaRepository(db)
	old := testutil.CreateMedia(t, db, 1)
	require.NoError(t, db.Model(old).Update("created_at", time.Now().Add(-48*time.Hour)).Error)
	testutil.CreateMedia(t, db, 1)

	orphans, err := repo.FindOrphans(time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, old.ID, orphans[0].ID)

	require.NoError(t, repo.Delete(old.ID))
	var n int64
	require.NoError(t, db.Unscoped().Model(&model.Media{}).Where("id = ?", old.ID).Count(&n).Error)
	assert.Zero(t, n)
}
