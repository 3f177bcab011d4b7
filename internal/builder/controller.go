// Package builder 题目编辑器状态机。每个 Controller 持有一个会话内某个作业的草稿题目，
// 并与题目接口同步。
package builder

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"baitapvui_backend/internal/client"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Remote 编辑器用到的题目接口
type Remote interface {
	CreateQuestion(ctx context.Context, assignmentID string, p client.QuestionPayload) (*model.QuestionDTO, error)
	ListQuestions(ctx context.Context, assignmentID string) ([]model.QuestionDTO, error)
	UpdateQuestion(ctx context.Context, id string, p client.QuestionPayload) (*model.QuestionDTO, error)
	DeleteQuestion(ctx context.Context, id string) error
	ReorderQuestions(ctx context.Context, assignmentID string, orders []model.QuestionOrder) error
	UploadMedia(ctx context.Context, mediaType model.MediaType, filename string, r io.Reader) (*model.MediaAttachment, error)
	DeleteMedia(ctx context.Context, id string) error
}

// Snapshots 编辑器状态的本地快照，写入失败不影响操作
type Snapshots interface {
	Load(ctx context.Context, assignmentID string) (model.BuilderState, bool)
	Save(ctx context.Context, assignmentID string, state model.BuilderState)
	Clear(ctx context.Context, assignmentID string)
}

// Upload 为题目选择的文件
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithDebounce 设置题干编辑的防抖窗口，0 表示立即生效
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce.SetWindow(d) }
}

// WithObserver 接收每个涉及后端的操作结果
func WithObserver(fn func(op string, err error)) Option {
	return func(c *Controller) { c.observe = fn }
}

// WithIDGenerator 替换本地 ID 与选项 ID 的生成方式
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

type Controller struct {
	assignmentID string
	remote       Remote
	snapshots    Snapshots
	log          *zap.Logger
	observe      func(op string, err error)
	newID        func() string

	mu      sync.Mutex
	state   model.BuilderState
	version uint64

	persistMu sync.Mutex
	persisted uint64

	questionLocks *keyedLock
	saveAllMu     sync.Mutex
	debounce      *debouncer
	lastActive    atomic.Int64
}

func NewController(assignmentID string, remote Remote, snapshots Snapshots, opts ...Option) *Controller {
	c := &Controller{
		assignmentID:  assignmentID,
		remote:        remote,
		snapshots:     snapshots,
		log:           zap.NewNop(),
		observe:       func(string, error) {},
		newID:         func() string { return uuid.New().String() },
		state:         model.NewBuilderState(assignmentID),
		questionLocks: newKeyedLock(),
		debounce:      newDebouncer(300 * time.Millisecond),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With(zap.String("assignment_id", assignmentID))
	c.lastActive.Store(time.Now().UnixNano())
	return c
}

func (c *Controller) AssignmentID() string { return c.assignmentID }

// State 返回当前状态的副本
func (c *Controller) State() model.BuilderState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// LastActive 最近一次操作的时间
func (c *Controller) LastActive() time.Time {
	return time.Unix(0, c.lastActive.Load())
}

func (c *Controller) SetDebounce(d time.Duration) { c.debounce.SetWindow(d) }

func (c *Controller) touch() { c.lastActive.Store(time.Now().UnixNano()) }

// dispatch 在当前状态上依次应用 action 并写快照
func (c *Controller) dispatch(ctx context.Context, actions ...Action) model.BuilderState {
	c.mu.Lock()
	for _, a := range actions {
		c.state = Reduce(c.state, a)
	}
	c.version++
	version, snap := c.version, c.state.Clone()
	c.mu.Unlock()

	c.persist(ctx, version, snap)
	return snap
}

// persist 写入快照，已有更新版本写入时跳过
func (c *Controller) persist(ctx context.Context, version uint64, snap model.BuilderState) {
	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if version <= c.persisted {
		return
	}
	c.snapshots.Save(context.WithoutCancel(ctx), c.assignmentID, snap)
	c.persisted = version
}

func (c *Controller) find(localID string) (model.DraftQuestion, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Find(localID)
}

func (c *Controller) record(op string, err error) {
	c.observe(op, err)
	if err != nil {
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			c.log.Warn("question builder operation failed", zap.String("op", op), zap.Error(err))
		}
	}
}

// AddQuestion 追加空题目并选中，题型无效时按选择题处理
func (c *Controller) AddQuestion(ctx context.Context, t model.QuestionType) model.BuilderState {
	c.touch()
	c.debounce.FlushAll()
	if t == "" {
		t = model.QuestionMultipleChoice
	}
	return c.dispatch(ctx, AddQuestion{LocalID: c.newID(), Type: t})
}

// UpdateQuestion 合并修改，题目不存在时忽略
func (c *Controller) UpdateQuestion(ctx context.Context, localID string, patch QuestionPatch) model.BuilderState {
	c.touch()
	c.debounce.Flush(localID)
	return c.dispatch(ctx, UpdateQuestion{LocalID: localID, Patch: patch})
}

// EditContent 记录逐键输入的题干，防抖窗口内同一题目没有新输入时才写入状态
func (c *Controller) EditContent(localID, content string) error {
	c.touch()
	if _, ok := c.find(localID); !ok {
		return ErrQuestionNotFound
	}
	c.debounce.Schedule(localID, func() {
		c.dispatch(context.Background(), UpdateQuestion{LocalID: localID, Patch: QuestionPatch{Content: &content}})
	})
	return nil
}

// FlushEdits 立即写入所有待定的题干编辑
func (c *Controller) FlushEdits() { c.debounce.FlushAll() }

func (c *Controller) SelectQuestion(ctx context.Context, localID string) (model.BuilderState, error) {
	c.touch()
	c.debounce.FlushAll()
	if localID != "" {
		if _, ok := c.find(localID); !ok {
			return c.State(), ErrQuestionNotFound
		}
	}
	return c.dispatch(ctx, SelectQuestion{LocalID: localID}), nil
}

// DeleteQuestion 删除题目。已保存的题目先从后端删除，成功后才修改本地状态；
// 随后尽力删除其媒体，失败只记日志
func (c *Controller) DeleteQuestion(ctx context.Context, localID string) (state model.BuilderState, err error) {
	c.touch()
	defer func() { c.record("delete_question", err) }()

	c.debounce.Flush(localID)
	unlock := c.questionLocks.Lock(localID)
	defer unlock()

	q, ok := c.find(localID)
	if !ok {
		return c.State(), ErrQuestionNotFound
	}
	if id := q.BackendID(); id != "" {
		if err := c.remote.DeleteQuestion(ctx, id); err != nil {
			return c.State(), err
		}
	}
	for _, m := range q.Media {
		if err := c.remote.DeleteMedia(ctx, m.ID); err != nil {
			c.log.Warn("delete media of removed question failed",
				zap.String("media_id", m.ID), zap.String("question_id", q.ID), zap.Error(err))
		}
	}
	return c.dispatch(ctx, RemoveQuestion{LocalID: localID}), nil
}

// ReorderQuestions 把 from 位置的题目移到 to
func (c *Controller) ReorderQuestions(ctx context.Context, from, to int) (model.BuilderState, error) {
	c.touch()
	c.mu.Lock()
	n := len(c.state.Questions)
	c.mu.Unlock()
	if from < 0 || from >= n || to < 0 || to >= n {
		return c.State(), ErrInvalidMove
	}
	return c.dispatch(ctx, MoveQuestion{From: from, To: to}), nil
}

func (c *Controller) MoveQuestionUp(ctx context.Context, localID string) (model.BuilderState, error) {
	return c.shift(ctx, localID, -1)
}

func (c *Controller) MoveQuestionDown(ctx context.Context, localID string) (model.BuilderState, error) {
	return c.shift(ctx, localID, 1)
}

func (c *Controller) shift(ctx context.Context, localID string, delta int) (model.BuilderState, error) {
	c.touch()
	if _, ok := c.find(localID); !ok {
		return c.State(), ErrQuestionNotFound
	}
	return c.dispatch(ctx, ShiftQuestion{LocalID: localID, Delta: delta}), nil
}

func (c *Controller) SetQuestionType(ctx context.Context, localID string, t model.QuestionType) (model.BuilderState, error) {
	c.touch()
	if !t.Valid() {
		return c.State(), ErrInvalidType
	}
	if _, ok := c.find(localID); !ok {
		return c.State(), ErrQuestionNotFound
	}
	return c.dispatch(ctx, SetQuestionType{LocalID: localID, Type: t}), nil
}

// AddOption 追加选项并返回选项 ID
func (c *Controller) AddOption(ctx context.Context, localID, text string) (model.BuilderState, string, error) {
	c.touch()
	if _, ok := c.find(localID); !ok {
		return c.State(), "", ErrQuestionNotFound
	}
	id := c.newID()
	return c.dispatch(ctx, AddOption{LocalID: localID, OptionID: id, Text: text}), id, nil
}

func (c *Controller) UpdateOption(ctx context.Context, localID, optionID string, patch OptionPatch) (model.BuilderState, error) {
	c.touch()
	if err := c.checkOption(localID, optionID); err != nil {
		return c.State(), err
	}
	return c.dispatch(ctx, UpdateOption{LocalID: localID, OptionID: optionID, Patch: patch}), nil
}

func (c *Controller) DeleteOption(ctx context.Context, localID, optionID string) (model.BuilderState, error) {
	c.touch()
	if err := c.checkOption(localID, optionID); err != nil {
		return c.State(), err
	}
	return c.dispatch(ctx, DeleteOption{LocalID: localID, OptionID: optionID}), nil
}

// SetCorrectOption 设置正确答案，设为正确时其余选项取消
func (c *Controller) SetCorrectOption(ctx context.Context, localID, optionID string, correct bool) (model.BuilderState, error) {
	c.touch()
	if err := c.checkOption(localID, optionID); err != nil {
		return c.State(), err
	}
	return c.dispatch(ctx, SetCorrectOption{LocalID: localID, OptionID: optionID, Correct: correct}), nil
}

func (c *Controller) checkOption(localID, optionID string) error {
	q, ok := c.find(localID)
	if !ok {
		return ErrQuestionNotFound
	}
	for _, o := range q.Options {
		if o.ID == optionID {
			return nil
		}
	}
	return ErrOptionNotFound
}

// UploadMedia 按上传策略校验文件，通过后上传并挂到题目上；本地校验失败时不发请求
func (c *Controller) UploadMedia(ctx context.Context, localID string, up Upload) (state model.BuilderState, media model.MediaAttachment, err error) {
	c.touch()
	defer func() { c.record("upload_media", err) }()

	if _, ok := c.find(localID); !ok {
		return c.State(), media, ErrQuestionNotFound
	}
	mediaType, result := validation.ValidateMediaFile(up.Filename, up.ContentType, up.Size)
	if !result.Valid() {
		return c.State(), media, &ValidationError{LocalID: localID, Result: result}
	}

	unlock := c.questionLocks.Lock(localID)
	defer unlock()

	m, err := c.remote.UploadMedia(ctx, mediaType, up.Filename, up.Body)
	if err != nil {
		return c.State(), media, err
	}
	if m.Filename == "" {
		m.Filename = up.Filename
	}
	return c.dispatch(ctx, AttachMedia{LocalID: localID, Media: *m}), *m, nil
}

// DeleteMedia 先从后端删除媒体，成功后再从题目移除
func (c *Controller) DeleteMedia(ctx context.Context, localID, mediaID string) (state model.BuilderState, err error) {
	c.touch()
	defer func() { c.record("delete_media", err) }()

	unlock := c.questionLocks.Lock(localID)
	defer unlock()

	q, ok := c.find(localID)
	if !ok {
		return c.State(), ErrQuestionNotFound
	}
	found := false
	for _, m := range q.Media {
		found = found || m.ID == mediaID
	}
	if !found {
		return c.State(), ErrMediaNotFound
	}
	if err := c.remote.DeleteMedia(ctx, mediaID); err != nil {
		return c.State(), err
	}
	return c.dispatch(ctx, DetachMedia{LocalID: localID, MediaID: mediaID}), nil
}

// SaveQuestion 校验后在后端创建或更新题目，期间题目被修改则不标记为已保存
func (c *Controller) SaveQuestion(ctx context.Context, localID string) (state model.BuilderState, err error) {
	c.touch()
	defer func() { c.record("save_question", err) }()

	c.debounce.Flush(localID)
	if err := c.save(ctx, localID, false); err != nil {
		return c.State(), err
	}
	return c.State(), nil
}

func (c *Controller) save(ctx context.Context, localID string, onlyUnsaved bool) error {
	unlock := c.questionLocks.Lock(localID)
	defer unlock()

	q, ok := c.find(localID)
	if !ok {
		return ErrQuestionNotFound
	}
	if onlyUnsaved && q.IsSaved {
		return nil
	}
	if result := validation.ValidateQuestion(q.Type, q.Content, q.Options); !result.Valid() {
		return &ValidationError{LocalID: localID, Result: result}
	}

	payload := client.PayloadFromDraft(q)
	var (
		dto *model.QuestionDTO
		err error
	)
	if id := q.BackendID(); id == "" {
		dto, err = c.remote.CreateQuestion(ctx, c.assignmentID, payload)
	} else {
		dto, err = c.remote.UpdateQuestion(ctx, id, payload)
	}
	if err != nil {
		return err
	}

	backendID := q.BackendID()
	if dto != nil && dto.ID != "" {
		backendID = dto.ID
	}
	c.dispatch(ctx, MarkSaved{LocalID: localID, BackendID: backendID, Revision: q.Revision})
	return nil
}

// SaveAllQuestions 按顺序逐个保存未保存的题目，再为所有有后端 ID 的题目提交一次排序；
// 遇到第一个失败即停止
func (c *Controller) SaveAllQuestions(ctx context.Context) (state model.BuilderState, err error) {
	c.touch()
	defer func() { c.record("save_all", err) }()

	c.saveAllMu.Lock()
	defer c.saveAllMu.Unlock()

	c.debounce.FlushAll()

	var pending []string
	for _, q := range c.State().Questions {
		if !q.IsSaved {
			pending = append(pending, q.LocalID)
		}
	}
	for _, localID := range pending {
		err := c.save(ctx, localID, true)
		if errors.Is(err, ErrQuestionNotFound) {
			continue
		}
		if err != nil {
			return c.State(), err
		}
	}

	current := c.State()
	if !current.IsDirty {
		return current, nil
	}
	orders := make([]model.QuestionOrder, 0, len(current.Questions))
	for _, q := range current.Questions {
		if id := q.BackendID(); id != "" {
			orders = append(orders, model.QuestionOrder{ID: id, Order: q.Order})
		}
	}
	if len(orders) > 0 {
		if err := c.remote.ReorderQuestions(ctx, c.assignmentID, orders); err != nil {
			return c.State(), err
		}
	}
	return c.dispatch(ctx, MarkClean{}), nil
}

// LoadQuestions 本地快照有题目时恢复快照，否则从题目接口加载
func (c *Controller) LoadQuestions(ctx context.Context) (state model.BuilderState, err error) {
	c.touch()
	defer func() { c.record("load", err) }()

	if snap, ok := c.snapshots.Load(ctx, c.assignmentID); ok && len(snap.Questions) > 0 {
		snap.AssignmentID = c.assignmentID
		return c.dispatch(ctx, Load{State: snap}), nil
	}

	c.dispatch(ctx, SetLoading{Loading: true})
	remote, err := c.remote.ListQuestions(ctx, c.assignmentID)
	if err != nil {
		return c.dispatch(ctx, SetError{Message: err.Error()}), err
	}

	loaded := model.NewBuilderState(c.assignmentID)
	for _, dto := range sortByOrder(remote) {
		q := model.DraftQuestion{
			ID:       dto.ID,
			LocalID:  c.newID(),
			Type:     dto.Type,
			Content:  dto.Content,
			Order:    dto.Order,
			Options:  append([]model.Option{}, dto.Options...),
			Media:    append([]model.MediaAttachment{}, dto.Media...),
			IsSaved:  true,
			Revision: 1,
		}
		loaded.Questions = append(loaded.Questions, q)
	}
	// 服务端顺序不连续时压缩，改动过的题目标记为未保存，由 SaveAll 写回
	renumber(&loaded)
	if len(loaded.Questions) > 0 {
		loaded.CurrentQuestionID = loaded.Questions[0].LocalID
	}
	return c.dispatch(ctx, Load{State: loaded}), nil
}

// ResetBuilder 丢弃待定编辑，清空状态与快照
func (c *Controller) ResetBuilder(ctx context.Context) model.BuilderState {
	c.touch()
	c.debounce.Cancel()

	c.mu.Lock()
	c.state = Reduce(c.state, Reset{})
	c.version++
	version, snap := c.version, c.state.Clone()
	c.mu.Unlock()

	c.persistMu.Lock()
	defer c.persistMu.Unlock()
	if version > c.persisted {
		c.snapshots.Clear(context.WithoutCancel(ctx), c.assignmentID)
		c.persisted = version
	}
	return snap
}

// Close 写入待定编辑，之后仍可继续使用
func (c *Controller) Close() {
	c.debounce.FlushAll()
}

func sortByOrder(qs []model.QuestionDTO) []model.QuestionDTO {
	out := append([]model.QuestionDTO{}, qs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
