package util

import (
	"strings"
	"time"
)

// DateOf 返回时间在本地时区下的日历日期
func DateOf(t time.Time) string {
	return t.In(time.Local).Format(DateFormat)
}

// Today 当前日期
func Today() string {
	return DateOf(time.Now())
}

// ParseDate 校验 YYYY-MM-DD，空串回退到 fallback
func ParseDate(s, fallback string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	if _, err := time.ParseInLocation(DateFormat, s, time.Local); err != nil {
		return "", Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return s, nil
}

// AddDays 日期加减天数
func AddDays(date string, days int) string {
	t, err := time.ParseInLocation(DateFormat, date, time.Local)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(DateFormat)
}

// DateRange 返回以 end 结尾、共 days 天的闭区间起点
func DateRange(end string, days int) (string, string) {
	return AddDays(end, -(days - 1)), end
}
