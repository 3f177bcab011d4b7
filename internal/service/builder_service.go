package service

import (
	"baitapvui_backend/internal/builder"
	"baitapvui_backend/internal/builder/snapshot"
	"baitapvui_backend/internal/client"
	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/repository"
	"baitapvui_backend/internal/util"
	"baitapvui_backend/pkg/monitoring"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuilderService 管理编辑器会话，每个用户 × 会话 × 作业对应一个 builder.Controller
type BuilderService struct {
	Config         config.BuilderConfig
	AssignmentRepo *repository.AssignmentRepository
	Store          snapshot.Store
	Log            *zap.Logger

	// NewRemote 创建会话使用的后端客户端，测试中替换
	NewRemote func() builder.Remote

	mu       sync.Mutex
	sessions map[string]*builder.Controller
	debounce atomic.Int64
}

func NewBuilderService(cfg config.BuilderConfig, assignmentRepo *repository.AssignmentRepository, store snapshot.Store, log *zap.Logger) *BuilderService {
	s := &BuilderService{
		Config:         cfg,
		AssignmentRepo: assignmentRepo,
		Store:          store,
		Log:            log,
		sessions:       make(map[string]*builder.Controller),
	}
	s.NewRemote = func() builder.Remote { return client.New(s.Config) }
	s.debounce.Store(int64(cfg.Debounce()))
	return s
}

func sessionKey(userID uint, sessionID, assignmentID string) string {
	return strconv.FormatUint(uint64(userID), 10) + ":" + sessionID + ":" + assignmentID
}

// Open 校验用户可管理该作业后返回其编辑器会话
func (s *BuilderService) Open(user *util.Claims, sessionID, assignmentID string) (*builder.Controller, error) {
	if user == nil {
		return nil, util.ErrPermissionDenied
	}
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
	return s.Session(user.UserID, sessionID, assignmentID), nil
}

// Session 返回用户会话的编辑器，不存在时创建，不做权限校验
func (s *BuilderService) Session(userID uint, sessionID, assignmentID string) *builder.Controller {
	key := sessionKey(userID, sessionID, assignmentID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[key]; ok {
		return c
	}

	log := s.Log.With(zap.Uint("user_id", userID), zap.String("builder_session", sessionID))
	persistence := snapshot.NewPersistence(s.Store, sessionID,
		snapshot.WithOwner(userID),
		snapshot.WithLogger(log),
		snapshot.WithFailureHook(func(op string, err error) {
			monitoring.SnapshotFailures.WithLabelValues(op).Inc()
		}),
	)
	c := builder.NewController(assignmentID, s.NewRemote(), persistence,
		builder.WithLogger(log),
		builder.WithDebounce(time.Duration(s.debounce.Load())),
		builder.WithObserver(observeBuilder),
	)
	s.sessions[key] = c
	monitoring.BuilderSessions.Set(float64(len(s.sessions)))
	return c
}

// Drop 关闭并移除会话，快照保留到过期
func (s *BuilderService) Drop(userID uint, sessionID, assignmentID string) {
	key := sessionKey(userID, sessionID, assignmentID)
	s.mu.Lock()
	c, ok := s.sessions[key]
	delete(s.sessions, key)
	monitoring.BuilderSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (s *BuilderService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetDebounce 配置热更新时调整所有会话的编辑防抖窗口
func (s *BuilderService) SetDebounce(d time.Duration) {
	s.debounce.Store(int64(d))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.sessions {
		c.SetDebounce(d)
	}
}

// EvictIdle 关闭空闲超过 idle 的会话，返回移除数量
func (s *BuilderService) EvictIdle(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	s.mu.Lock()
	var stale []*builder.Controller
	for key, c := range s.sessions {
		if c.LastActive().Before(cutoff) {
			stale = append(stale, c)
			delete(s.sessions, key)
		}
	}
	monitoring.BuilderSessions.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	// 先移出注册表再 flush，避免持锁执行
	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// StartEviction 启动空闲会话清理，返回停止函数
func (s *BuilderService) StartEviction(interval time.Duration) func() {
	idle := s.Config.IdleTimeout()
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}

	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.EvictIdle(idle); n > 0 {
					s.Log.Info("evicted idle builder sessions", zap.Int("count", n))
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// Close flush 所有会话，服务关闭时调用
func (s *BuilderService) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*builder.Controller)
	s.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
	monitoring.BuilderSessions.Set(0)
}

func observeBuilder(op string, err error) {
	monitoring.BuilderOperations.WithLabelValues(op, resultOf(err)).Inc()
}

// resultOf 把错误归类为指标标签
func resultOf(err error) string {
	var vErr *builder.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &vErr):
		return "invalid"
	case client.IsNetwork(err):
		return "network"
	case client.IsThrottled(err):
		return "throttled"
	case client.IsRejected(err):
		return "rejected"
	case client.StatusOf(err) > 0:
		return "server"
	default:
		return "error"
	}
}
