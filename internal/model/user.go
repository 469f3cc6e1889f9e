package model

import "time"

// 用户角色
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 系统账户
type User struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(64);uniqueIndex:uk_username;not null;comment:用户名" json:"username"`
	Password  string    `gorm:"column:password;type:varchar(255);not null;comment:密码哈希" json:"-"`
	RealName  string    `gorm:"column:real_name;type:varchar(64);comment:姓名" json:"realName"`
	Phone     string    `gorm:"column:phone;type:varchar(32);comment:手机号" json:"phone"`
	IDCard    string    `gorm:"column:id_card;type:varchar(32);comment:身份证号" json:"idCard"`
	Role      string    `gorm:"column:role;type:varchar(16);default:user;comment:角色 admin/user" json:"role"`
	Status    int       `gorm:"column:status;type:integer;default:1;comment:状态 1正常 0禁用" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (User) TableName() string { return "users" }
