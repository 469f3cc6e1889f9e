package model

import "time"

// Hospital 转院目录中的医院
type Hospital struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(128);uniqueIndex:uk_hospital_name;not null;comment:医院名称" json:"name"`
	Level       string    `gorm:"column:level;type:varchar(16);comment:医院等级" json:"level"`
	Specialty   string    `gorm:"column:specialty;type:text;comment:专科特长" json:"specialty"`
	Address     string    `gorm:"column:address;type:varchar(256);comment:地址" json:"address"`
	Phone       string    `gorm:"column:phone;type:varchar(32);comment:联系电话" json:"phone"`
	Description string    `gorm:"column:description;type:text;comment:简介" json:"description"`
	AverageCost float64   `gorm:"column:average_cost;type:numeric(14,2);default:0;comment:平均费用" json:"averageCost"`
	Rating      float64   `gorm:"column:rating;type:numeric(3,2);default:0;comment:评价均分" json:"rating"`
	RatingCount int       `gorm:"column:rating_count;type:integer;default:0;comment:评价数" json:"ratingCount"`
	Status      string    `gorm:"column:status;type:varchar(16);default:营业中;comment:营业状态" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

// HospitalReview 医院评价
type HospitalReview struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	HospitalID uint64    `gorm:"column:hospital_id;type:bigint;index:idx_review_hospital;not null;comment:医院ID" json:"hospitalId"`
	UserID     uint64    `gorm:"column:user_id;type:bigint;not null;comment:评价用户ID" json:"userId"`
	Rating     int       `gorm:"column:rating;type:integer;not null;comment:评分1-5" json:"rating"`
	Comment    string    `gorm:"column:comment;type:text;comment:评价内容" json:"comment"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (Hospital) TableName() string       { return "hospitals" }
func (HospitalReview) TableName() string { return "hospital_reviews" }
