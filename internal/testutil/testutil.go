// Package testutil 测试用的临时 SQLite 库与静默日志
package testutil

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"MedGuard/internal/config"
	"MedGuard/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// Logger 丢弃输出的 logger
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OpenStore 在临时目录打开一个空库（未建表）
func OpenStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "medguard.sqlite"),
		LogLevel: "silent",
	}, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// NewStore 建表、迁移并写入初始数据
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	st := OpenStore(t)
	require.NoError(t, st.Init(context.Background()))
	return st
}

// NewEmptyStore 只建表，不写初始数据
func NewEmptyStore(t *testing.T) *store.Store {
	t.Helper()
	st := OpenStore(t)
	ctx := context.Background()
	require.NoError(t, st.CreateTables(ctx))
	st.Migrate(ctx)
	return st
}
