package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"MedGuard/internal/store"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// MaxPageSize 单页最大条数
const MaxPageSize = 100

// Page 分页参数，PageSize 为 0 表示不分页
type Page struct {
	Page     int
	PageSize int
}

// Normalize 修正非法分页参数
func (p Page) Normalize() Page {
	if p.PageSize <= 0 {
		return Page{}
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Enabled 是否需要分页
func (p Page) Enabled() bool { return p.PageSize > 0 }

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.Normalize()
	if !p.Enabled() {
		return db
	}
	return db.Offset((p.Page - 1) * p.PageSize).Limit(p.PageSize)
}

// likeAny 在多个字段上做包含匹配：(a LIKE ? OR b LIKE ?)
func likeAny(db *gorm.DB, search string, columns ...string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return db
	}
	pattern := "%" + search + "%"
	conds := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, c := range columns {
		conds[i] = c + " LIKE ?"
		args[i] = pattern
	}
	return db.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// countAndFind 用同一过滤条件统计总数并查询当前页
func countAndFind[T any](db *gorm.DB, page Page, order string) ([]T, int64, error) {
	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, store.WrapError(err)
	}
	var rows []T
	q := db.Session(&gorm.Session{})
	if order != "" {
		q = q.Order(order)
	}
	if err := page.apply(q).Find(&rows).Error; err != nil {
		return nil, 0, store.WrapError(err)
	}
	return rows, total, nil
}

// findByID 按主键查询，不存在返回 ErrNotFound
func findByID[T any](ctx context.Context, db *gorm.DB, id uint64) (*T, error) {
	var row T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &row, nil
}

// findOne 按条件查询第一条，不存在返回 nil, nil
func findOne[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where(query, args...).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, store.WrapError(err)
	}
	return &row, nil
}

// updateByID 整行更新，返回受影响行数
func updateByID[T any](ctx context.Context, db *gorm.DB, id uint64, values map[string]interface{}) (int64, error) {
	var m T
	tx := db.WithContext(ctx).Model(&m).Where("id = ?", id).Updates(values)
	if tx.Error != nil {
		return 0, store.WrapError(tx.Error)
	}
	return tx.RowsAffected, nil
}

// deleteByID 物理删除，返回受影响行数
func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint64) (int64, error) {
	var m T
	tx := db.WithContext(ctx).Where("id = ?", id).Delete(&m)
	if tx.Error != nil {
		return 0, store.WrapError(tx.Error)
	}
	return tx.RowsAffected, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return store.WrapError(err)
}

// NameCount GROUP BY 统计结果
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// groupCount 执行 "SELECT col AS name, COUNT(*) AS count ... GROUP BY col" 类查询
func groupCount(ctx context.Context, st *store.Store, query string, args ...interface{}) ([]NameCount, error) {
	rows, err := st.QueryAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]NameCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, NameCount{Name: asString(r["name"]), Count: asInt64(r["count"])})
	}
	return out, nil
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}

func asInt64(v interface{}) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float64:
		return int64(x)
	case []byte:
		n, _ := strconv.ParseInt(string(x), 10, 64)
		return n
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	}
	return 0
}

func asFloat64(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case []byte:
		f, _ := strconv.ParseFloat(string(x), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(x, 64)
		return f
	}
	return 0
}
