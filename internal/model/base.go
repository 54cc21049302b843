package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AllModels 参与自动迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&TrackingEntry{},
		&MissionDefinition{},
		&UserMission{},
		&ActivityDefinition{},
		&ActivityCompletion{},
		&PointAward{},
	}
}
