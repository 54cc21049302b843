package util

import (
	"strconv"
)

// ParseID 解析路径参数中的 ID，0 或非法值返回校验错误
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, Validation("invalid id %q", s)
	}
	return uint(id), nil
}
