package model

import (
	"fmt"
	"time"
)

type MissionStatus string

const (
	MissionActive    MissionStatus = "active"
	MissionCompleted MissionStatus = "completed"
	MissionCancelled MissionStatus = "cancelled"
)

// MissionDefinition 任务目录，MetricKind 为空表示手动更新进度的习惯类任务
type MissionDefinition struct {
	BaseModel
	Code        string      `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Title       string      `gorm:"size:255;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Category    string      `gorm:"size:50" json:"category"`
	Unit        string      `gorm:"size:20" json:"unit"`
	TargetValue float64     `gorm:"not null" json:"target_value"`
	Points      int         `gorm:"default:0" json:"points"`
	MetricKind  *MetricKind `gorm:"size:32;index" json:"metric_kind,omitempty"`
	Aggregation Aggregation `gorm:"size:10;default:'SUM'" json:"aggregation"`
	IsEnabled   bool        `gorm:"default:true" json:"is_enabled"`
}

func (MissionDefinition) TableName() string {
	return "mission_definitions"
}

// Tracked 是否由打卡数据驱动
func (m *MissionDefinition) Tracked() bool {
	return m.MetricKind != nil && *m.MetricKind != ""
}

// UserMission 用户接受的任务；CurrentValue/Progress 只由任务引擎写入
type UserMission struct {
	BaseModel
	UserID        uint               `gorm:"index:idx_user_mission_status,priority:1;not null" json:"user_id"`
	MissionID     uint               `gorm:"index;not null" json:"mission_id"`
	Mission       *MissionDefinition `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	Status        MissionStatus      `gorm:"size:20;index:idx_user_mission_status,priority:2;default:'active'" json:"status"`
	CurrentValue  float64            `gorm:"default:0" json:"current_value"`
	Progress      int                `gorm:"default:0" json:"progress"`
	AcceptedAt    time.Time          `json:"accepted_at"`
	AcceptedOn    string             `gorm:"size:10;index" json:"accepted_on"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CompletedOn   string             `gorm:"size:10;index" json:"completed_on,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	MissionDate   *string            `gorm:"size:10;index" json:"mission_date,omitempty"`
	ProgressOn    string             `gorm:"size:10" json:"progress_on"` // 当前值对应的打卡日期
	OpenSlot      *string            `gorm:"size:96;uniqueIndex" json:"-"`
	PointsAwarded int                `gorm:"default:0" json:"points_awarded"`
	Notes         string             `gorm:"type:text" json:"notes,omitempty"`
}

func (UserMission) TableName() string {
	return "user_missions"
}

// Terminal completed/cancelled 均为终态
func (m *UserMission) Terminal() bool {
	return m.Status == MissionCompleted || m.Status == MissionCancelled
}

// MissionSlot 同一用户同一任务同一日期最多一条未取消记录
func MissionSlot(userID, missionID uint, date *string) string {
	d := "*"
	if date != nil && *date != "" {
		d = *date
	}
	return fmt.Sprintf("%d:%d:%s", userID, missionID, d)
}
