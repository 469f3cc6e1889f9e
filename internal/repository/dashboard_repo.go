package repository

import (
	"context"

	"MedGuard/internal/model"
	"MedGuard/internal/store"
)

// Counters 看板实时计数
type Counters struct {
	DRGPolicies      int64 `json:"drgPolicies"`
	PendingTransfers int64 `json:"pendingTransfers"`
	HighRiskEvents   int64 `json:"highRiskEvents"`
	PendingWarnings  int64 `json:"pendingWarnings"`
}

// DashboardRepository 看板统计
type DashboardRepository interface {
	Counters(ctx context.Context) (*Counters, error)
}

type dashboardRepository struct {
	st *store.Store
}

// NewDashboardRepository 创建 DashboardRepository 实例
func NewDashboardRepository(st *store.Store) DashboardRepository {
	return &dashboardRepository{st: st}
}

func (r *dashboardRepository) Counters(ctx context.Context) (*Counters, error) {
	c := &Counters{}
	queries := []struct {
		sql  string
		args []interface{}
		dst  *int64
	}{
		{"SELECT COUNT(*) FROM drg_policies WHERE status = ?", []interface{}{1}, &c.DRGPolicies},
		{"SELECT COUNT(*) FROM transfer_applications WHERE status = ?", []interface{}{model.TransferPending}, &c.PendingTransfers},
		{"SELECT COUNT(*) FROM risk_events WHERE risk_level = ?", []interface{}{model.RiskHigh}, &c.HighRiskEvents},
		{"SELECT COUNT(*) FROM warnings WHERE status = ?", []interface{}{model.HandlePending}, &c.PendingWarnings},
	}
	for _, q := range queries {
		n, err := r.st.Count(ctx, q.sql, q.args...)
		if err != nil {
			return nil, err
		}
		*q.dst = n
	}
	return c, nil
}
