package model

import "time"

// 风险等级
const (
	RiskHigh   = "高"
	RiskMedium = "中"
	RiskLow    = "低"
)

// 处理状态
const (
	HandlePending = "待处理"
	HandleDone    = "已处理"
)

// RiskEvent 风险事件
type RiskEvent struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	EventID      string    `gorm:"column:event_id;type:varchar(32);uniqueIndex:uk_risk_event_id;not null;comment:事件编号" json:"eventId"`
	PatientName  string    `gorm:"column:patient_name;type:varchar(64);comment:患者姓名" json:"patientName"`
	Hospital     string    `gorm:"column:hospital;type:varchar(128);comment:医院" json:"hospital"`
	RiskType     string    `gorm:"column:risk_type;type:varchar(32);comment:风险类型" json:"riskType"`
	RiskLevel    string    `gorm:"column:risk_level;type:varchar(8);comment:风险等级 高/中/低" json:"riskLevel"`
	HandleStatus string    `gorm:"column:handle_status;type:varchar(16);default:待处理;comment:处理状态" json:"handleStatus"`
	EventTime    time.Time `gorm:"column:event_time;autoCreateTime;comment:事件时间" json:"eventTime"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

// Warning 费用异常预警
type Warning struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	WarningID   string    `gorm:"column:warning_id;type:varchar(32);uniqueIndex:uk_warning_id;not null;comment:预警编号" json:"warningId"`
	Hospital    string    `gorm:"column:hospital;type:varchar(128);comment:医院" json:"hospital"`
	Type        string    `gorm:"column:type;type:varchar(32);comment:预警类型" json:"type"`
	Amount      float64   `gorm:"column:amount;type:numeric(14,2);default:0;comment:涉及金额" json:"amount"`
	Status      string    `gorm:"column:status;type:varchar(16);default:待处理;comment:处理状态" json:"status"`
	WarningTime time.Time `gorm:"column:warning_time;autoCreateTime;comment:预警时间" json:"warningTime"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (RiskEvent) TableName() string { return "risk_events" }
func (Warning) TableName() string   { return "warnings" }

// NormalizeRiskLevel 接受 high/medium/low 或 高/中/低，非法值返回空串
func NormalizeRiskLevel(level string) string {
	switch level {
	case "high", RiskHigh:
		return RiskHigh
	case "medium", RiskMedium:
		return RiskMedium
	case "low", RiskLow:
		return RiskLow
	}
	return ""
}
