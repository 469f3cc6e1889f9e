package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"MedGuard/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Models 按依赖顺序列出全部表模型
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.DRGPolicy{},
		&model.RehabInstitution{},
		&model.Hospital{},
		&model.HospitalReview{},
		&model.TransferApplication{},
		&model.RiskEvent{},
		&model.Warning{},
		&model.AIConversation{},
	}
}

// Schema 进程级的表结构缓存，启动时迁移后写入，路由只读
type Schema struct {
	mu     sync.RWMutex
	tables map[string]map[string]struct{}
}

func newSchema() *Schema {
	return &Schema{tables: make(map[string]map[string]struct{})}
}

// HasColumn 表中是否存在该字段
func (s *Schema) HasColumn(table, column string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cols, ok := s.tables[table]
	if !ok {
		return false
	}
	_, ok = cols[strings.ToLower(column)]
	return ok
}

func (s *Schema) set(table string, columns []string) {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[strings.ToLower(c)] = struct{}{}
	}
	s.mu.Lock()
	s.tables[table] = set
	s.mu.Unlock()
}

// Init 启动时执行一次：建表 -> 增量迁移（尽力而为）-> 空表写入初始数据
func (s *Store) Init(ctx context.Context) error {
	if err := s.CreateTables(ctx); err != nil {
		return err
	}
	s.Migrate(ctx)
	if err := s.Seed(ctx); err != nil {
		return fmt.Errorf("初始数据写入失败: %w", err)
	}
	return nil
}

// CreateTables 创建缺失的表
func (s *Store) CreateTables(ctx context.Context) error {
	migrator := s.db.WithContext(ctx).Migrator()
	for _, m := range Models() {
		if migrator.HasTable(m) {
			continue
		}
		if err := migrator.CreateTable(m); err != nil {
			return fmt.Errorf("创建表失败 %T: %w", m, err)
		}
	}
	s.logger.Info("数据表检查完成（不存在则已创建）")
	return nil
}

// Migrate 对已有表补齐缺失字段与唯一索引，失败只记录日志，并刷新结构缓存
func (s *Store) Migrate(ctx context.Context) {
	for _, m := range Models() {
		if err := s.migrateTable(ctx, m); err != nil {
			s.logger.WithError(err).WithField("model", fmt.Sprintf("%T", m)).Warn("表结构迁移失败，继续启动")
		}
	}
}

func (s *Store) migrateTable(ctx context.Context, m interface{}) error {
	db := s.db.WithContext(ctx)
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(m); err != nil {
		return fmt.Errorf("解析模型失败: %w", err)
	}
	table := stmt.Schema.Table
	migrator := db.Migrator()

	existing, err := s.columnSet(db, m)
	if err != nil {
		return err
	}

	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" || field.IgnoreMigration {
			continue
		}
		if _, ok := existing[strings.ToLower(field.DBName)]; ok {
			continue
		}
		log := s.logger.WithFields(logrus.Fields{"table": table, "column": field.DBName})
		if err := migrator.AddColumn(m, field.DBName); err != nil {
			if isDuplicateColumn(err) {
				log.Debug("字段已存在，跳过")
				continue
			}
			log.WithError(err).Warn("新增字段失败，跳过")
			continue
		}
		log.Info("已新增字段")
	}

	for _, field := range stmt.Schema.Fields {
		name, ok := field.TagSettings["UNIQUEINDEX"]
		if !ok || name == "" || migrator.HasIndex(m, name) {
			continue
		}
		if err := migrator.CreateIndex(m, name); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{"table": table, "index": name}).Warn("创建唯一索引失败，跳过")
		}
	}

	cols, err := s.columnSet(db, m)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	s.schema.set(table, names)
	return nil
}

func (s *Store) columnSet(db *gorm.DB, m interface{}) (map[string]struct{}, error) {
	types, err := db.Migrator().ColumnTypes(m)
	if err != nil {
		return nil, fmt.Errorf("读取字段信息失败: %w", err)
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToLower(t.Name())] = struct{}{}
	}
	return set, nil
}
