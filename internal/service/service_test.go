package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/fast-note-ai-service/internal/dao"
	"github.com/haierkeys/fast-note-ai-service/internal/domain"
	"github.com/haierkeys/fast-note-ai-service/pkg/app"
	"github.com/haierkeys/fast-note-ai-service/pkg/code"
	"github.com/haierkeys/fast-note-ai-service/pkg/writequeue"
)

type testEnv struct {
	dao     *dao.Dao
	notes   domain.NoteRepository
	users   domain.UserRepository
	runs    domain.ImportRunRepository
	queue   *writequeue.Manager
	tokens  app.TokenManager
	config  *ServiceConfig
	logger  *zap.Logger
	noteSvc NoteService
	userSvc UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		TablePrefix:  "pre_",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	d := dao.New(db, context.Background(), dao.WithConfig(&dao.DatabaseConfig{AutoMigrate: true}))

	queue := writequeue.New(nil, zap.NewNop())
	t.Cleanup(func() { _ = queue.Shutdown(context.Background()) })

	env := &testEnv{
		dao:    d,
		notes:  dao.NewNoteRepository(d),
		users:  dao.NewUserRepository(d),
		runs:   dao.NewImportRunRepository(d),
		queue:  queue,
		tokens: app.NewTokenManager(app.TokenConfig{SecretKey: "test-secret"}),
		config: &ServiceConfig{User: UserServiceConfig{RegisterIsEnable: true}},
		logger: zap.NewNop(),
	}
	env.noteSvc = NewNoteService(env.notes, queue, env.logger)
	env.userSvc = NewUserService(env.users, env.tokens, env.logger, env.config)
	return env
}

// codeOf extracts the response code carried by err
func codeOf(t *testing.T, err error) *code.Code {
	t.Helper()
	var c *code.Code
	require.True(t, errors.As(err, &c), "expected *code.Code, got %T: %v", err, err)
	return c
}
