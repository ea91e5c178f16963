// Package utils 通用工具
package utils

import (
	"strconv"
	"strings"
	"time"
)

// 远端分页从 0 开始，默认每页 1000 条
const (
	DefaultPageSize = 1000
	MaxPageSize     = 1000
)

// Pagination 分页参数
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPagination 创建分页参数，越界值被夹到合法范围
func NewPagination(page, pageSize int) Pagination {
	if page < 0 {
		page = 0
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// ParsePagination 从查询字符串解析分页，无法解析按缺省处理
func ParsePagination(page, size string) Pagination {
	p, _ := strconv.Atoi(strings.TrimSpace(page))
	s, _ := strconv.Atoi(strings.TrimSpace(size))
	return NewPagination(p, s)
}

// ParseTime 依次尝试多个格式解析时间
func ParseTime(value string, layouts ...string) (time.Time, error) {
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
