package util

const DateFormat = "2006-01-02"

// 统计周期上限
const (
	DefaultPeriodDays = 7
	MaxPeriodDays     = 90
)
