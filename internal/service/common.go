package service

import (
	"errors"
	"strings"

	"MedGuard/internal/apperr"
	"MedGuard/internal/repository"

	"github.com/shopspring/decimal"
)

// ListResult 分页列表返回
type ListResult[T any] struct {
	List     []T   `json:"list"`
	Total    int64 `json:"total"`
	Page     int   `json:"page,omitempty"`
	PageSize int   `json:"pageSize,omitempty"`
}

func newListResult[T any](list []T, total int64, page repository.Page) *ListResult[T] {
	if list == nil {
		list = []T{}
	}
	page = page.Normalize()
	return &ListResult[T]{List: list, Total: total, Page: page.Page, PageSize: page.PageSize}
}

// Distribution 饼图 / 柱状图单项
type Distribution struct {
	Value int64  `json:"value"`
	Name  string `json:"name"`
}

// mapNotFound 仓储的 ErrNotFound 转为 404
func mapNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

// FormatYuan 金额格式化为 ¥32,500 / ¥1,234.5
func FormatYuan(amount float64) string {
	s := decimal.NewFromFloat(amount).Round(2).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := "¥" + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
