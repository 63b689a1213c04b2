package task

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/app"
	"github.com/haierkeys/fast-note-ai-service/internal/service"
)

// NoteExportTask 定时导出所有用户的笔记快照
type NoteExportTask struct {
	exports service.ExportService
	spec    string
	logger  *zap.Logger
}

func (t *NoteExportTask) Name() string {
	return "NoteExport"
}

func (t *NoteExportTask) Spec() string {
	return t.spec
}

// LoopInterval unused, the task runs on Spec
func (t *NoteExportTask) LoopInterval() time.Duration {
	return 0
}

func (t *NoteExportTask) IsStartupRun() bool {
	return false
}

func (t *NoteExportTask) Run(ctx context.Context) error {
	n, err := t.exports.ExportAll(ctx)
	if err != nil {
		return err
	}
	t.logger.Info("scheduled export finished", zap.Int("users", n))
	return nil
}

// NewNoteExportTask nil when export is disabled or storage is unavailable
func NewNoteExportTask(a *app.App) (Task, error) {
	cfg := a.Config().Export
	if !cfg.Enabled {
		return nil, nil
	}
	if a.Storage == nil {
		return nil, errors.New("note export enabled but storage is unavailable")
	}
	if _, err := ParseSpec(cfg.Cron); err != nil {
		return nil, errors.Wrapf(err, "invalid export cron %q", cfg.Cron)
	}
	return &NoteExportTask{exports: a.ExportService, spec: cfg.Cron, logger: a.Logger()}, nil
}

func init() {
	Register(NewNoteExportTask)
}
