package model

import "time"

// 机构营业状态
const (
	InstitutionOpen   = "营业中"
	InstitutionClosed = "停业整顿"
)

// 价格档位
const (
	PriceLow    = "较低"
	PriceMedium = "中等"
	PriceHigh   = "较高"
)

// RehabInstitution 康复机构，同时作为普通用户选择转院目标的"医院"
type RehabInstitution struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(128);uniqueIndex:uk_rehab_name;not null;comment:机构名称" json:"name"`
	Level       string    `gorm:"column:level;type:varchar(16);comment:机构等级" json:"level"`
	BedCount    int       `gorm:"column:bed_count;type:integer;default:0;comment:床位数" json:"bedCount"`
	Specialty   string    `gorm:"column:specialty;type:text;comment:专科特长" json:"specialty"`
	Status      string    `gorm:"column:status;type:varchar(16);default:营业中;comment:营业状态" json:"status"`
	Rating      float64   `gorm:"column:rating;type:numeric(3,2);default:0;comment:评分0-5" json:"rating"`
	PriceLevel  string    `gorm:"column:price_level;type:varchar(8);default:中等;comment:价格档位" json:"priceLevel"`
	Address     string    `gorm:"column:address;type:varchar(256);comment:地址" json:"address"`
	Phone       string    `gorm:"column:phone;type:varchar(32);comment:联系电话" json:"phone"`
	Description string    `gorm:"column:description;type:text;comment:简介" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (RehabInstitution) TableName() string { return "rehabilitation_institutions" }

// ValidPriceLevel 价格档位是否合法
func ValidPriceLevel(level string) bool {
	switch level {
	case PriceLow, PriceMedium, PriceHigh:
		return true
	}
	return false
}
