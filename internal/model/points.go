package model

type PointSource string

const (
	PointSourceMission  PointSource = "mission"
	PointSourceActivity PointSource = "activity"
)

// PointAward 积分流水，(source, source_id) 唯一保证同一来源只发放一次
type PointAward struct {
	BaseModel
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	Source    PointSource `gorm:"size:20;index:idx_point_source,unique,priority:1;not null" json:"source"`
	SourceID  uint        `gorm:"index:idx_point_source,unique,priority:2;not null" json:"source_id"`
	Points    int         `gorm:"not null" json:"points"`
	AwardedOn string      `gorm:"size:10;index" json:"awarded_on"`
}

func (PointAward) TableName() string {
	return "point_awards"
}
