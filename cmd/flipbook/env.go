package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/porticus-lab/go-flipbook/config"
)

type envKey struct{}

// localEnv keeps everything the program needs in a single place.
type localEnv struct {
	Cfg *config.Config
	Log *zap.Logger

	start         time.Time
	restoreStdLog func()
}

func envFromContext(ctx context.Context) *localEnv {
	if env, ok := ctx.Value(envKey{}).(*localEnv); ok {
		return env
	}
	panic("local environment not found in context")
}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &localEnv{start: time.Now(), Log: zap.NewNop()})
}

func (e *localEnv) uptime() time.Duration {
	return time.Since(e.start)
}

func (e *localEnv) redirectStdLog() {
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *localEnv) restoreLog() {
	_ = e.Log.Sync()
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
