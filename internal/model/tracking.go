package model

import "time"

// TrackingEntry 追加写入的打卡记录，写入后不再修改
type TrackingEntry struct {
	BaseModel
	UserID     uint             `gorm:"index:idx_tracking_user_metric_date,priority:1;not null" json:"user_id"`
	Category   TrackingCategory `gorm:"size:20;not null" json:"category"`
	MetricKind MetricKind       `gorm:"size:32;index:idx_tracking_user_metric_date,priority:2;not null" json:"metric_kind"`
	Value      float64          `gorm:"not null" json:"value"`
	Unit       string           `gorm:"size:20" json:"unit"`
	RecordedAt time.Time        `gorm:"not null" json:"recorded_at"`
	EntryDate  string           `gorm:"size:10;index:idx_tracking_user_metric_date,priority:3;not null" json:"entry_date"`
	Note       string           `gorm:"size:255" json:"note,omitempty"`
}

func (TrackingEntry) TableName() string {
	return "tracking_entries"
}
