package importer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/pkg/logger"
)

// Transition one state change of a run, reported to observers
// Transition 状态迁移事件
type Transition struct {
	RunID     string
	UID       int64
	SourceURL string
	VideoID   string
	From      State
	To        State
	// Elapsed time spent in From
	Elapsed time.Duration
	// Err set when To is Failed
	Err error
}

// Observer receives transitions synchronously on the run goroutine
type Observer interface {
	OnTransition(t Transition)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(t Transition)

func (f ObserverFunc) OnTransition(t Transition) {
	f(t)
}

// Outcome final result of a run
// Outcome 导入结果
type Outcome struct {
	RunID   string
	State   State
	VideoID string
	// NoteID set when State is Done
	NoteID string
	// Message says which stage failed and why; empty on success
	Message string
	Err     error
}

// Kind failure kind, empty on success
func (o Outcome) Kind() Kind {
	return KindOf(o.Err)
}

// Pipeline wires the four stages together. It holds no per-run state and is shared by all surfaces.
// Pipeline 组装各阶段，本身无运行状态，可被多个 Surface 共享
type Pipeline struct {
	fetcher     Fetcher
	transformer Transformer
	persister   Persister
	logger      *zap.Logger
	observers   []Observer
}

type Option func(*Pipeline)

func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithObserver(o ...Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o...)
	}
}

func New(fetcher Fetcher, transformer Transformer, persister Persister, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:     fetcher,
		transformer: transformer,
		persister:   persister,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewSurface one invocation surface; at most one run in flight per surface
// NewSurface 创建调用面，每个调用面同时最多一个导入
func (p *Pipeline) NewSurface() *Surface {
	return &Surface{pipeline: p}
}

// Surface guards the in-flight flag of one invocation surface
type Surface struct {
	pipeline *Pipeline
	busy     atomic.Bool
}

// Busy reports whether a run holds the surface
func (s *Surface) Busy() bool {
	return s.busy.Load()
}

// Acquire claims the idle surface. A busy surface is rejected with ErrRunInFlight, never queued.
// Acquire 占用空闲调用面，忙碌时立即返回 ErrRunInFlight
func (s *Surface) Acquire() (*IdleRun, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrRunInFlight
	}
	return &IdleRun{surface: s, id: uuid.NewString()}, nil
}

// IdleRun single-use handle that can start exactly one run
// IdleRun 一次性句柄，只能启动一次
type IdleRun struct {
	surface *Surface
	id      string
	used    atomic.Bool
}

// ID run id, known before Start
func (r *IdleRun) ID() string {
	return r.id
}

// Release gives the surface back without running.
// It reports false when the handle was already started or released.
func (r *IdleRun) Release() bool {
	if !r.used.CompareAndSwap(false, true) {
		return false
	}
	r.surface.busy.Store(false)
	return true
}

// Start executes the run and blocks until it reaches Done or Failed.
// The surface is released on both outcomes.
// Start 执行导入直到 Done 或 Failed，两种结果都会释放调用面
func (r *IdleRun) Start(ctx context.Context, uid int64, sourceURL string) Outcome {
	if !r.used.CompareAndSwap(false, true) {
		return Outcome{RunID: r.id, State: Failed, Message: ErrRunConsumed.Error(), Err: ErrRunConsumed}
	}
	defer r.surface.busy.Store(false)

	return r.surface.pipeline.run(ctx, r.id, uid, sourceURL)
}

// run 单次执行的状态
type run struct {
	p         *Pipeline
	id        string
	uid       int64
	sourceURL string
	videoID   string
	state     State
	entered   time.Time
	started   time.Time
}

func (p *Pipeline) run(ctx context.Context, id string, uid int64, sourceURL string) Outcome {
	now := time.Now()
	r := &run{p: p, id: id, uid: uid, sourceURL: sourceURL, state: Idle, entered: now, started: now}

	r.advance(FetchingTranscript, nil)
	videoID, err := ParseVideoID(sourceURL)
	if err != nil {
		return r.fail(err)
	}
	r.videoID = videoID

	transcript, err := p.fetcher.Fetch(ctx, videoID)
	if err != nil {
		return r.fail(err)
	}

	r.advance(RequestingTransform, nil)
	raw, err := p.transformer.Request(ctx, transcript)
	if err != nil {
		return r.fail(err)
	}

	r.advance(ExtractingResult, nil)
	result, err := Extract(raw)
	if err != nil {
		return r.fail(err)
	}

	r.advance(Persisting, nil)
	noteID, err := p.persister.Write(ctx, uid, result, sourceURL)
	if err != nil {
		return r.fail(err)
	}

	r.advance(Done, nil)
	p.logger.Info("import done",
		zap.String(logger.FieldRunID, id),
		zap.Int64(logger.FieldUID, uid),
		zap.String(logger.FieldVideoID, videoID),
		zap.String(logger.FieldNoteID, noteID),
		zap.Duration(logger.FieldDuration, time.Since(r.started)),
	)
	return Outcome{RunID: id, State: Done, VideoID: videoID, NoteID: noteID}
}

func (r *run) advance(to State, err error) {
	now := time.Now()
	t := Transition{
		RunID:     r.id,
		UID:       r.uid,
		SourceURL: r.sourceURL,
		VideoID:   r.videoID,
		From:      r.state,
		To:        to,
		Elapsed:   now.Sub(r.entered),
		Err:       err,
	}
	r.state = to
	r.entered = now

	r.p.logger.Debug("import transition",
		zap.String(logger.FieldRunID, r.id),
		zap.Int64(logger.FieldUID, r.uid),
		zap.String(logger.FieldStage, t.From.String()),
		zap.String(logger.FieldState, to.String()),
	)
	for _, o := range r.p.observers {
		o.OnTransition(t)
	}
}

// fail stamps the failing stage on err and moves to Failed
func (r *run) fail(err error) Outcome {
	stage := r.state

	var pe *Error
	if errors.As(err, &pe) {
		cp := *pe
		if cp.Stage == Idle {
			cp.Stage = stage
		}
		pe = &cp
	} else {
		pe = &Error{Kind: kindForStage(stage), Stage: stage, Err: err}
	}

	r.advance(Failed, pe)
	r.p.logger.Warn("import failed",
		zap.String(logger.FieldRunID, r.id),
		zap.Int64(logger.FieldUID, r.uid),
		zap.String(logger.FieldSourceURL, r.sourceURL),
		zap.String(logger.FieldVideoID, r.videoID),
		zap.String(logger.FieldStage, stage.String()),
		zap.String(logger.FieldKind, string(pe.Kind)),
		zap.Error(pe),
	)
	return Outcome{RunID: r.id, State: Failed, VideoID: r.videoID, Message: pe.Error(), Err: pe}
}

// kindForStage fallback for errors that do not carry a kind
func kindForStage(s State) Kind {
	switch s {
	case FetchingTranscript:
		return KindTranscriptUnavailable
	case RequestingTransform:
		return KindGenerationFailed
	case ExtractingResult:
		return KindMalformedJSON
	}
	return KindPersistenceError
}
