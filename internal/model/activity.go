package model

import "time"

type ActivityType string

const (
	ActivityNormal  ActivityType = "normal"
	ActivityIntense ActivityType = "intense"
	ActivityRelaxed ActivityType = "relaxed"
)

// activityMultipliers 强度对应的积分倍率
var activityMultipliers = map[ActivityType]float64{
	ActivityNormal:  1.0,
	ActivityIntense: 1.5,
	ActivityRelaxed: 0.8,
}

// Multiplier 返回倍率，未知类型返回 false
func (t ActivityType) Multiplier() (float64, bool) {
	m, ok := activityMultipliers[t]
	return m, ok
}

// ActivityDefinition 健康活动目录
type ActivityDefinition struct {
	BaseModel
	Code            string `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Title           string `gorm:"size:255;not null" json:"title"`
	Description     string `gorm:"type:text" json:"description"`
	Category        string `gorm:"size:50" json:"category"`
	DurationMinutes int    `gorm:"default:0" json:"duration_minutes"`
	Points          int    `gorm:"default:0" json:"points"`
	Difficulty      string `gorm:"size:20" json:"difficulty"`
	IsEnabled       bool   `gorm:"default:true" json:"is_enabled"`
}

func (ActivityDefinition) TableName() string {
	return "activity_definitions"
}

// ActivityCompletion 每日完成记录，(user, activity, date) 唯一
type ActivityCompletion struct {
	BaseModel
	UserID          uint                `gorm:"index:idx_user_activity_date,unique,priority:1;not null" json:"user_id"`
	ActivityID      uint                `gorm:"index:idx_user_activity_date,unique,priority:2;not null" json:"activity_id"`
	Activity        *ActivityDefinition `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
	ActivityDate    string              `gorm:"size:10;index:idx_user_activity_date,unique,priority:3;not null" json:"activity_date"`
	ActivityType    ActivityType        `gorm:"size:20;not null" json:"activity_type"`
	DurationMinutes int                 `json:"duration_minutes"`
	PointsEarned    int                 `json:"points_earned"`
	CompletedAt     time.Time           `json:"completed_at"`
	Notes           string              `gorm:"size:500" json:"notes,omitempty"`
}

func (ActivityCompletion) TableName() string {
	return "activity_completions"
}
