package builder

import (
	"sort"
	"sync"
	"time"
)

// debouncer 按 key 防抖，窗口内没有新调用时才执行；Flush 立即执行
type debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	pending map[string]*pendingCall
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, pending: make(map[string]*pendingCall)}
}

func (d *debouncer) SetWindow(window time.Duration) {
	d.mu.Lock()
	d.window = window
	d.mu.Unlock()
}

// Schedule 替换 key 的待定调用并重新计时
func (d *debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	if old, ok := d.pending[key]; ok {
		old.timer.Stop()
		delete(d.pending, key)
	}
	if d.window <= 0 {
		d.mu.Unlock()
		fn()
		return
	}
	p := &pendingCall{fn: fn}
	p.timer = time.AfterFunc(d.window, func() { d.fire(key, p) })
	d.pending[key] = p
	d.mu.Unlock()
}

func (d *debouncer) fire(key string, p *pendingCall) {
	d.mu.Lock()
	if d.pending[key] != p {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	p.fn()
}

func (d *debouncer) take(key string) *pendingCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok {
		return nil
	}
	delete(d.pending, key)
	p.timer.Stop()
	return p
}

// Flush 在当前 goroutine 执行 key 的待定调用
func (d *debouncer) Flush(key string) {
	if p := d.take(key); p != nil {
		p.fn()
	}
}

// FlushAll 按 key 顺序执行所有待定调用
func (d *debouncer) FlushAll() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	d.mu.Unlock()
	sort.Strings(keys)
	for _, k := range keys {
		d.Flush(k)
	}
}

// Cancel 丢弃所有待定调用
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, k)
	}
}

func (d *debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
