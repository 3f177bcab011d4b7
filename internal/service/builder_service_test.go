package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"baitapvui_backend/internal/builder"
	"baitapvui_backend/internal/builder/snapshot"
	"baitapvui_backend/internal/client"
	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/testutil"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubRemote 所有调用都返回成功，并统计 list 调用次数
type stubRemote struct {
	lists atomic.Int32
}

func (r *stubRemote) CreateQuestion(_ context.Context, assignmentID string, p client.QuestionPayload) (*model.QuestionDTO, error) {
	return &model.QuestionDTO{ID: "srv-1", AssignmentID: assignmentID}, nil
}

func (r *stubRemote) ListQuestions(context.Context, string) ([]model.QuestionDTO, error) {
	r.lists.Add(1)
	return nil, nil
}

func (r *stubRemote) UpdateQuestion(_ context.Context, id string, _ client.QuestionPayload) (*model.QuestionDTO, error) {
	return &model.QuestionDTO{ID: id}, nil
}

func (r *stubRemote) DeleteQuestion(context.Context, string) error { return nil }

func (r *stubRemote) ReorderQuestions(context.Context, string, []model.QuestionOrder) error {
	return nil
}

func (r *stubRemote) UploadMedia(_ context.Context, t model.MediaType, filename string, _ io.Reader) (*model.MediaAttachment, error) {
	return &model.MediaAttachment{ID: "m1", Type: t, Filename: filename}, nil
}

func (r *stubRemote) DeleteMedia(context.Context, string) error { return nil }

func newBuilderService(t *testing.T) (*BuilderService, *stubRemote) {
	svc, remote, _ := newBuilderServiceWithDB(t)
	return svc, remote
}

func newBuilderServiceWithDB(t *testing.T) (*BuilderService, *stubRemote, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	remote := &stubRemote{}
	svc := NewBuilderService(config.BuilderConfig{IdleMinutes: 30}, repository.NewAssignmentRepository(db),
		snapshot.NewMemoryStore(), zap.NewNop())
	svc.NewRemote = func() builder.Remote { return remote }
	t.Cleanup(svc.Close)
	return svc, remote, db
}

func TestBuilderSessionsAreScoped(t *testing.T) {
	svc, _ := newBuilderService(t)

	a := svc.Session(1, "s1", "asg-1")
	assert.Same(t, a, svc.Session(1, "s1", "asg-1"))
	assert.NotSame(t, a, svc.Session(1, "s2", "asg-1"))
	assert.NotSame(t, a, svc.Session(1, "s1", "asg-2"))
	assert.NotSame(t, a, svc.Session(2, "s1", "asg-1"))
	assert.Equal(t, 4, svc.Len())

	a.AddQuestion(context.Background(), model.QuestionEssay)
	assert.Empty(t, svc.Session(1, "s2", "asg-1").State().Questions)
	assert.Empty(t, svc.Session(2, "s1", "asg-1").State().Questions)

	svc.Drop(1, "s1", "asg-1")
	assert.Equal(t, 3, svc.Len())
	assert.NotSame(t, a, svc.Session(1, "s1", "asg-1"))
}

func TestBuilderSessionsAreOwnedByUser(t *testing.T) {
	svc, _, db := newBuilderServiceWithDB(t)
	asg := testutil.CreateAssignment(t, db, teacher.UserID)

	mine, err := svc.Open(teacher, "tab-1", asg.ID)
	require.NoError(t, err)
	mine.AddQuestion(context.Background(), model.QuestionEssay)

	_, err = svc.Open(other, "tab-1", asg.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = svc.Open(teacher, "tab-1", "missing")
	assert.ErrorIs(t, err, util.ErrAssignmentNotFound)

	// 管理员使用相同的会话头也拿到独立的空状态
	theirs, err := svc.Open(admin, "tab-1", asg.ID)
	require.NoError(t, err)
	assert.NotSame(t, mine, theirs)
	assert.Empty(t, theirs.State().Questions)
	state, err := theirs.LoadQuestions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Questions, "snapshot of another user is not visible")
}

func TestBuilderEvictionKeepsSnapshot(t *testing.T) {
	svc, remote := newBuilderService(t)
	ctx := context.Background()

	c := svc.Session(1, "s1", "asg-1")
	c.AddQuestion(ctx, model.QuestionEssay)
	c.AddQuestion(ctx, model.QuestionMultipleChoice)

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 0, svc.EvictIdle(time.Hour))
	assert.Equal(t, 1, svc.EvictIdle(time.Millisecond))
	assert.Equal(t, 0, svc.Len())

	state, err := svc.Session(1, "s1", "asg-1").LoadQuestions(ctx)
	require.NoError(t, err)
	assert.Len(t, state.Questions, 2)
	assert.True(t, state.IsDirty)
	assert.Zero(t, remote.lists.Load(), "snapshot wins over the backend")
}

func TestBuilderSetDebounceReachesSessions(t *testing.T) {
	svc, _ := newBuilderService(t)
	svc.SetDebounce(0)

	c := svc.Session(1, "s1", "asg-1")
	state := c.AddQuestion(context.Background(), model.QuestionEssay)
	require.NoError(t, c.EditContent(state.Questions[0].LocalID, "typed"))
	assert.Equal(t, "typed", c.State().Questions[0].Content, "zero window applies edits immediately")
}

func TestBuilderResultLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{&builder.ValidationError{Result: validation.ValidateQuestion(model.QuestionEssay, "", nil)}, "invalid"},
		{&client.APIError{Kind: client.KindNetwork, Err: errors.New("dial")}, "network"},
		{&client.APIError{Kind: client.KindRejected, Status: http.StatusUnprocessableEntity}, "rejected"},
		{&client.APIError{Kind: client.KindServer, Status: http.StatusBadGateway}, "server"},
		{&client.APIError{Kind: client.KindThrottled, Status: http.StatusTooManyRequests}, "throttled"},
		{builder.ErrQuestionNotFound, "error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, resultOf(tc.err), "%v", tc.err)
	}
}
