// Package safe_close coordinates graceful shutdown of long-running components
// Package safe_close 协调常驻组件的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached component and waits for them
// SafeClose 向所有挂载的组件广播一次关闭信号并等待其退出
type SafeClose struct {
	once    sync.Once
	mu      sync.Mutex
	wg      sync.WaitGroup
	signal  chan struct{}
	err     error
	started bool
}

func NewSafeClose() *SafeClose {
	return &SafeClose{signal: make(chan struct{})}
}

// Attach runs fn in its own goroutine. fn must call done once it has released its resources.
// Attach 在独立 goroutine 中运行 fn，fn 释放资源后必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.signal)
}

// SendCloseSignal closes the signal channel; only the first call and its error take effect
// SendCloseSignal 发送关闭信号，仅首次调用及其错误生效
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.started = true
		s.mu.Unlock()
		close(s.signal)
	})
}

// Closing reports whether the close signal has been sent
func (s *SafeClose) Closing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// WaitClosed blocks until every attached component called done
// WaitClosed 阻塞直到所有组件调用 done，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
