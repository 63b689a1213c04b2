package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/pkg/safe_close"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	LoopInterval() time.Duration   // 执行间隔，<= 0 表示不循环
	IsStartupRun() bool            // 是否立即执行一次
}

// CronTask a task driven by a five-field cron expression instead of LoopInterval
// CronTask 使用五段式 cron 表达式调度的任务
type CronTask interface {
	Task
	Spec() string
}

// cronParser minute hour dom month dow
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSpec validates a cron expression
func ParseSpec(spec string) (cron.Schedule, error) {
	return cronParser.Parse(spec)
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	sc     *safe_close.SafeClose
	cron   *cron.Cron
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, sc *safe_close.SafeClose) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
		sc:     sc,
		cron:   cron.New(cron.WithParser(cronParser)),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Tasks 已添加的任务
func (s *Scheduler) Tasks() []Task {
	return append([]Task(nil), s.tasks...)
}

// Start 启动所有任务
func (s *Scheduler) Start() {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	s.logger.Info("tasks starting", zap.Int("count", len(s.tasks)))

	cronJobs := 0
	for _, task := range s.tasks {
		if ct, ok := task.(CronTask); ok && ct.Spec() != "" {
			if s.addCron(ct) {
				cronJobs++
			}
			continue
		}
		s.startTask(task)
	}

	if cronJobs > 0 {
		s.cron.Start()
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			// 等待执行中的 cron 任务结束
			<-s.cron.Stop().Done()
			s.logger.Info("cron tasks stopped")
		})
	}
}

func (s *Scheduler) addCron(task CronTask) bool {
	_, err := s.cron.AddFunc(task.Spec(), func() { s.run(task, "cronRun") })
	if err != nil {
		s.logger.Error("task cron spec invalid", zap.String("name", task.Name()), zap.String("spec", task.Spec()), zap.Error(err))
		return false
	}
	if task.IsStartupRun() {
		go s.run(task, "startupRun")
	}
	s.logger.Info("task scheduled", zap.String("name", task.Name()), zap.String("spec", task.Spec()))
	return true
}

// run executes the task once, a panic is logged and swallowed
func (s *Scheduler) run(task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String("name", task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	s.logger.Info("task running", zap.String("name", task.Name()), zap.String("mode", mode))
	if err := task.Run(context.Background()); err != nil {
		s.logger.Error("task running error",
			zap.String("name", task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}

// startTask 启动单个循环任务
func (s *Scheduler) startTask(task Task) {
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		if task.IsStartupRun() {
			go s.run(task, "startupRun")
		}

		if task.LoopInterval() <= 0 {
			return
		}

		ticker := time.NewTicker(task.LoopInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.run(task, "loopRun")
			case <-closeSignal:
				s.logger.Info("task stopped", zap.String("name", task.Name()))
				return
			}
		}
	})
}
