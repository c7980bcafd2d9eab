package domain

import (
	"strings"
	"time"
)

// FilterCriteria 邮件筛选条件，所有字段均可选，
// 未设置的字段表示该谓词不施加约束。
type FilterCriteria struct {
	SearchTerm      string     `json:"searchTerm"`      // 关键词（主题/正文/发件人）
	DateFrom        *time.Time `json:"dateFrom"`        // 起始日期
	DateTo          *time.Time `json:"dateTo"`          // 截止日期（含当天，延展到 23:59:59）
	Sender          string     `json:"sender"`          // 发件人包含
	Priority        []int      `json:"priority"`        // 优先级集合
	HasAttachment   *bool      `json:"hasAttachment"`   // 是否有附件
	IsStarred       *bool      `json:"isStarred"`       // 是否加星
	SubjectContains string     `json:"subjectContains"` // 主题包含
	BodyContains    string     `json:"bodyContains"`    // 正文包含
}

// HasActive 判断是否至少有一个条件被设置。
// 仅作为跳过整条过滤链的优化，结果必须与空条件跑完整链一致。
func (c *FilterCriteria) HasActive() bool {
	if c == nil {
		return false
	}
	return strings.TrimSpace(c.SearchTerm) != "" ||
		c.DateFrom != nil ||
		c.DateTo != nil ||
		strings.TrimSpace(c.Sender) != "" ||
		len(c.Priority) > 0 ||
		c.HasAttachment != nil ||
		c.IsStarred != nil ||
		strings.TrimSpace(c.SubjectContains) != "" ||
		strings.TrimSpace(c.BodyContains) != ""
}
