// Package writequeue serialises write operations per user
// Package writequeue 按用户串行化写操作
// Note creation relies on it so createdAt stays monotonic within a user's collection,
// and so SQLite does not report "database is locked" under concurrent writers.
// 笔记创建依赖它保证同一用户的 createdAt 单调递增，同时避免 SQLite 出现 "database is locked"。
package writequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 用户写队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 写队列管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作等待超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config write queue configuration
// Config 写队列配置
type Config struct {
	// QueueCapacity per-user queue capacity
	// QueueCapacity 每用户队列容量
	QueueCapacity int
	// WriteTimeout how long Execute waits for its operation
	// WriteTimeout Execute 等待写操作完成的最长时间
	WriteTimeout time.Duration
	// IdleTimeout idle per-user workers exit after this long
	// IdleTimeout 空闲的用户 worker 在此时间后退出
	IdleTimeout time.Duration
}

// DefaultConfig returns default configuration
// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

type writeOp struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

type userQueue struct {
	uid int64
	ch  chan writeOp
}

// Manager owns one queue and one worker goroutine per active user
// Manager 为每个活跃用户维护一个队列和一个 worker
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	queues map[int64]*userQueue
	closed bool
	wg     sync.WaitGroup
}

// New creates write queue manager, nil cfg uses DefaultConfig
// New 创建写队列管理器
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.QueueCapacity > 0 {
			c.QueueCapacity = cfg.QueueCapacity
		}
		if cfg.WriteTimeout > 0 {
			c.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.IdleTimeout > 0 {
			c.IdleTimeout = cfg.IdleTimeout
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		config: c,
		logger: logger,
		queues: make(map[int64]*userQueue),
	}
}

// Execute runs fn after every earlier write of the same user has finished
// Execute 在同一用户之前的写操作全部完成后执行 fn
func (m *Manager) Execute(ctx context.Context, uid int64, fn func() error) error {
	op := writeOp{ctx: ctx, fn: fn, result: make(chan error, 1)}

	// sends happen under mu, so a worker that removed itself from the map never receives again
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrWriteQueueClosed
	}
	q, ok := m.queues[uid]
	if !ok {
		q = &userQueue{uid: uid, ch: make(chan writeOp, m.config.QueueCapacity)}
		m.queues[uid] = q
		m.wg.Add(1)
		go m.worker(q)
	}
	select {
	case q.ch <- op:
	default:
		m.mu.Unlock()
		m.logger.Warn("write queue full", zap.Int64("uid", uid))
		return ErrWriteQueueFull
	}
	m.mu.Unlock()

	timer := time.NewTimer(m.config.WriteTimeout)
	defer timer.Stop()

	select {
	case err := <-op.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) worker(q *userQueue) {
	defer m.wg.Done()

	idle := time.NewTimer(m.config.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case op, ok := <-q.ch:
			if !ok {
				return
			}
			m.run(q.uid, op)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(m.config.IdleTimeout)
		case <-idle.C:
			m.mu.Lock()
			if len(q.ch) > 0 || m.closed {
				m.mu.Unlock()
				idle.Reset(m.config.IdleTimeout)
				continue
			}
			delete(m.queues, q.uid)
			m.mu.Unlock()
			return
		}
	}
}

func (m *Manager) run(uid int64, op writeOp) {
	if err := op.ctx.Err(); err != nil {
		op.result <- err
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("write operation panic", zap.Int64("uid", uid), zap.Any("panic", r))
			op.result <- errors.New("write operation panic")
		}
	}()
	op.result <- op.fn()
}

// ActiveQueues 当前存在 worker 的用户数
func (m *Manager) ActiveQueues() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queues)
}

// Shutdown drains every queue and waits for the workers
// Shutdown 排空所有队列并等待 worker 退出
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, q := range m.queues {
		close(q.ch)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("write queue manager shutdown completed")
		return nil
	case <-ctx.Done():
		m.logger.Warn("write queue manager shutdown timeout")
		return ctx.Err()
	}
}
