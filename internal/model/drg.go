package model

import "time"

// DRGPolicy DRG 支付政策
type DRGPolicy struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	DRGCode         string    `gorm:"column:drg_code;type:varchar(32);uniqueIndex:uk_drg_code;not null;comment:DRG编码" json:"drgCode"`
	DRGName         string    `gorm:"column:drg_name;type:varchar(128);not null;comment:DRG名称" json:"drgName"`
	Diagnosis       string    `gorm:"column:diagnosis;type:text;comment:包含诊断" json:"diagnosis"`
	PaymentStandard float64   `gorm:"column:payment_standard;type:numeric(14,2);default:0;comment:支付标准（元）" json:"paymentStandard"`
	EffectiveDate   string    `gorm:"column:effective_date;type:varchar(16);comment:生效日期 YYYY-MM-DD" json:"effectiveDate"`
	Status          int       `gorm:"column:status;type:integer;comment:状态 1启用 0停用" json:"status"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (DRGPolicy) TableName() string { return "drg_policies" }
