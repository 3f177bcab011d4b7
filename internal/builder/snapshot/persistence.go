package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"baitapvui_backend/internal/model"

	"go.uber.org/zap"
)

// KeyNamespace 快照键前缀
const KeyNamespace = "baitapvui:question-builder:"

// Persistence 编辑器快照适配器，失败不返回给调用方，只记日志并交给失败回调
type Persistence struct {
	store     Store
	owner     string
	sessionID string
	log       *zap.Logger
	onFailure func(op string, err error)
}

type Option func(*Persistence)

func WithLogger(l *zap.Logger) Option {
	return func(p *Persistence) { p.log = l }
}

// WithFailureHook 每个被吞掉的错误都会回调，用于计数
func WithFailureHook(fn func(op string, err error)) Option {
	return func(p *Persistence) { p.onFailure = fn }
}

// WithOwner 把用户 ID 加入快照键，不同用户的同名会话互不可见
func WithOwner(userID uint) Option {
	return func(p *Persistence) { p.owner = "user-" + strconv.FormatUint(uint64(userID), 10) + ":" }
}

func NewPersistence(store Store, sessionID string, opts ...Option) *Persistence {
	p := &Persistence{
		store:     store,
		sessionID: sessionID,
		log:       zap.NewNop(),
		onFailure: func(string, error) {},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Persistence) Key(assignmentID string) string {
	return KeyNamespace + p.owner + p.sessionID + ":" + assignmentID
}

func (p *Persistence) fail(op, assignmentID string, err error) {
	p.log.Warn("question builder snapshot "+op+" failed",
		zap.String("session", p.sessionID),
		zap.String("assignment_id", assignmentID),
		zap.Error(err))
	p.onFailure(op, err)
}

// Load 返回已存快照，没有时返回 false；questions 不是数组的快照视为损坏并删除
func (p *Persistence) Load(ctx context.Context, assignmentID string) (model.BuilderState, bool) {
	key := p.Key(assignmentID)
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			p.fail("load", assignmentID, err)
		}
		return model.BuilderState{}, false
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil || !isArray(probe["questions"]) {
		p.discard(ctx, assignmentID, key, errors.New("questions is not an array"))
		return model.BuilderState{}, false
	}

	var state model.BuilderState
	if err := json.Unmarshal(raw, &state); err != nil {
		p.discard(ctx, assignmentID, key, err)
		return model.BuilderState{}, false
	}
	if state.AssignmentID == "" {
		state.AssignmentID = assignmentID
	}
	return state, true
}

func (p *Persistence) discard(ctx context.Context, assignmentID, key string, cause error) {
	p.fail("corrupt", assignmentID, cause)
	if err := p.store.Delete(ctx, key); err != nil {
		p.fail("clear", assignmentID, err)
	}
}

// Save 状态中有题目或为 dirty 时写入完整状态
func (p *Persistence) Save(ctx context.Context, assignmentID string, state model.BuilderState) {
	if len(state.Questions) == 0 && !state.IsDirty {
		return
	}
	b, err := json.Marshal(state)
	if err != nil {
		p.fail("save", assignmentID, err)
		return
	}
	if err := p.store.Set(ctx, p.Key(assignmentID), b); err != nil {
		p.fail("save", assignmentID, err)
	}
}

// Clear 删除快照，快照不存在也不报错
func (p *Persistence) Clear(ctx context.Context, assignmentID string) {
	if err := p.store.Delete(ctx, p.Key(assignmentID)); err != nil && !errors.Is(err, ErrNotFound) {
		p.fail("clear", assignmentID, err)
	}
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
