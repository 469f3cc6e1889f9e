// Package store 负责数据库连接、三种基础 SQL 原语以及表结构生命周期（建表、增量迁移、初始数据）。
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"MedGuard/internal/apperr"
	"MedGuard/internal/config"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Result Exec 的执行结果
type Result struct {
	InsertedID   int64
	RowsAffected int64
}

// Store 数据库句柄，启动时构建一次并注入到各仓储
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
	schema *Schema
}

// New 用已打开的 gorm.DB 构建 Store（测试中可传入 sqlmock 连接）
func New(db *gorm.DB, logger *logrus.Logger) *Store {
	return &Store{db: db, logger: logger, schema: newSchema()}
}

// Open 按配置打开数据库。sqlite 只保留一个连接，postgres 库不存在时先自动创建
func Open(cfg config.DatabaseConfig, log *logrus.Logger) (*Store, error) {
	gormCfg := &gorm.Config{Logger: newGormLogger(log, cfg.LogLevel)}

	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite", "sqlite3":
		if err := ensureSQLiteDir(cfg.DSN); err != nil {
			return nil, fmt.Errorf("创建数据库目录失败: %w", err)
		}
		db, err := gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("连接SQLite失败: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取SQL DB失败: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		log.WithField("dsn", cfg.DSN).Info("SQLite连接成功")
		return New(db, log), nil

	case "postgres", "postgresql":
		db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "3D000") {
				log.Info("目标数据库不存在，尝试自动创建…")
				if e := ensureDatabaseExists(cfg.DSN); e != nil {
					return nil, fmt.Errorf("创建数据库失败: %w", e)
				}
				db, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
			}
			if err != nil {
				return nil, fmt.Errorf("连接PostgreSQL失败: %w", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("获取SQL DB失败: %w", err)
		}
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		log.Info("PostgreSQL连接成功")
		return New(db, log), nil
	}
	return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
}

func ensureSQLiteDir(dsn string) error {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := dsn
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// newGormLogger GORM 日志输出到 logrus
func newGormLogger(log *logrus.Logger, level string) logger.Interface {
	lvl := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		lvl = logger.Silent
	case "error":
		lvl = logger.Error
	case "info":
		lvl = logger.Info
	}
	return logger.New(log, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// DB 底层 gorm 句柄，供仓储使用
func (s *Store) DB() *gorm.DB { return s.db }

// Schema 启动时缓存的表结构
func (s *Store) Schema() *Schema { return s.schema }

// Close 关闭连接
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// QueryAll 执行查询并返回全部行
func (s *Store) QueryAll(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, wrapError(err)
	}
	return rows, nil
}

// QueryOne 执行查询并返回第一行，无结果时返回 nil, nil
func (s *Store) QueryOne(ctx context.Context, query string, args ...interface{}) (map[string]interface{}, error) {
	var rows []map[string]interface{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, wrapError(err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Exec 执行写语句。INSERT 在同一事务内读取自增ID
func (s *Store) Exec(ctx context.Context, query string, args ...interface{}) (Result, error) {
	var res Result
	if !isInsert(query) {
		tx := s.db.WithContext(ctx).Exec(query, args...)
		if tx.Error != nil {
			return res, wrapError(tx.Error)
		}
		res.RowsAffected = tx.RowsAffected
		return res, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := tx.Exec(query, args...)
		if r.Error != nil {
			return r.Error
		}
		res.RowsAffected = r.RowsAffected
		return tx.Raw(s.lastInsertIDQuery()).Scan(&res.InsertedID).Error
	})
	if err != nil {
		return Result{}, wrapError(err)
	}
	return res, nil
}

// Count 统计行数
func (s *Store) Count(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&n).Error; err != nil {
		return 0, wrapError(err)
	}
	return n, nil
}

func (s *Store) lastInsertIDQuery() string {
	if s.db.Dialector.Name() == "postgres" {
		return "SELECT lastval()"
	}
	return "SELECT last_insert_rowid()"
}

func isInsert(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT")
}

// wrapError 驱动错误转为 apperr，唯一约束冲突单独归类
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return apperr.Conflict("数据已存在").Wrap(err)
	}
	return apperr.Storage(err)
}

// WrapError 供仓储包装 gorm 链式调用的错误
func WrapError(err error) error { return wrapError(err) }

// IsUniqueViolation 是否为唯一约束冲突（sqlite / postgres）
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "23505")
}

// isDuplicateColumn 字段已存在（并发或重复启动时的 ALTER）
func isDuplicateColumn(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}
