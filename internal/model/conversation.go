package model

import (
	"time"

	"gorm.io/datatypes"
)

// AIConversation AI 助手对话记录
type AIConversation struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID" json:"id"`
	UserID    *uint64        `gorm:"column:user_id;type:bigint;comment:调用用户ID" json:"userId"`
	UserRole  string         `gorm:"column:user_role;type:varchar(16);comment:调用方角色" json:"userRole"`
	Persona   string         `gorm:"column:persona;type:varchar(32);comment:助手人设" json:"persona"`
	Mode      string         `gorm:"column:mode;type:varchar(16);comment:live/mock/fallback" json:"mode"`
	Message   string         `gorm:"column:message;type:text;comment:用户问题" json:"message"`
	Response  string         `gorm:"column:response;type:text;comment:助手回复" json:"response"`
	Context   datatypes.JSON `gorm:"column:context;comment:结构化上下文" json:"context"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (AIConversation) TableName() string { return "ai_conversations" }
