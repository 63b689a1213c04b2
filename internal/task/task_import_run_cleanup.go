package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	"github.com/haierkeys/fast-note-ai-service/internal/service"
)

// ImportRunCleanupTask removes finished import runs past the retention
type ImportRunCleanupTask struct {
	imports service.ImportService
	logger  *zap.Logger
}

func (t *ImportRunCleanupTask) Name() string {
	return "ImportRunCleanup"
}

func (t *ImportRunCleanupTask) LoopInterval() time.Duration {
	return time.Hour
}

func (t *ImportRunCleanupTask) IsStartupRun() bool {
	return true
}

func (t *ImportRunCleanupTask) Run(ctx context.Context) error {
	removed, err := t.imports.CleanupRuns(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		t.logger.Info("import runs cleaned", zap.Int64("removed", removed))
	}
	return nil
}

func init() {
	Register(func(a *app.App) (Task, error) {
		return &ImportRunCleanupTask{imports: a.ImportService, logger: a.Logger()}, nil
	})
}
