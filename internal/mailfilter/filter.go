// Package mailfilter 实现邮件筛选链：按固定顺序串联一组相互独立的谓词，
// 每个谓词在自己的条件未设置时原样放行，设置时收窄列表后交给下一环。
package mailfilter

import (
	"strings"
	"time"

	"webmail/backend/internal/domain"
)

// Filter 是链上的一环：收窄输入列表并返回结果。
type Filter func(mails []domain.Mail) []domain.Mail

// Apply 按 搜索 → 日期范围 → 发件人 → 优先级 → 附件 → 加星 → 主题 → 正文
// 的顺序把列表依次穿过所有过滤环。criteria 为 nil 或列表为空时为恒等。
// 谓词彼此独立，顺序只影响收窄性能，不影响结果。
func Apply(mails []domain.Mail, criteria *domain.FilterCriteria) []domain.Mail {
	if criteria == nil || len(mails) == 0 {
		return mails
	}
	for _, f := range buildChain(criteria) {
		mails = f(mails)
	}
	return mails
}

// HasActiveFilters 判断条件集中是否至少设置了一个谓词，
// 供调用方在没有任何条件时跳过整条链（纯优化，结果不变）。
func HasActiveFilters(criteria *domain.FilterCriteria) bool {
	return criteria.HasActive()
}

// buildChain 根据条件构建固定顺序的过滤链
func buildChain(c *domain.FilterCriteria) []Filter {
	return []Filter{
		searchFilter(c.SearchTerm),
		dateRangeFilter(c.DateFrom, c.DateTo),
		senderFilter(c.Sender),
		priorityFilter(c.Priority),
		attachmentFilter(c.HasAttachment),
		starredFilter(c.IsStarred),
		subjectFilter(c.SubjectContains),
		bodyFilter(c.BodyContains),
	}
}

// containsFold 大小写不敏感的子串匹配
func containsFold(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

// searchFilter 关键词过滤：主题、正文或发件人任一包含即保留
func searchFilter(term string) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return mails
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if containsFold(m.Subject, term) ||
				containsFold(m.Body, term) ||
				containsFold(m.From, term) {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}

// dateRangeFilter 日期范围过滤。
// 无时间戳的邮件一律排除；dateTo 延展到当天 23:59:59（含当天）。
func dateRangeFilter(from, to *time.Time) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		if from == nil && to == nil {
			return mails
		}
		var endOfDay time.Time
		if to != nil {
			y, mo, d := to.Date()
			endOfDay = time.Date(y, mo, d, 23, 59, 59, 0, to.Location())
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if m.Timestamp.IsZero() {
				continue
			}
			if from != nil && m.Timestamp.Before(*from) {
				continue
			}
			if to != nil && m.Timestamp.After(endOfDay) {
				continue
			}
			filtered = append(filtered, m)
		}
		return filtered
	}
}

// senderFilter 发件人包含过滤
func senderFilter(term string) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return mails
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if containsFold(m.From, term) {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}

// priorityFilter 优先级集合过滤。保持输入顺序，不做重排，
// 排序统一交给排序阶段处理。
func priorityFilter(priorities []int) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		if len(priorities) == 0 {
			return mails
		}
		allowed := make(map[int]struct{}, len(priorities))
		for _, p := range priorities {
			allowed[p] = struct{}{}
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if _, ok := allowed[m.Priority]; ok {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}

// attachmentFilter 附件有无过滤
func attachmentFilter(want *bool) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		if want == nil {
			return mails
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if m.HasAttachment == *want {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}

// starredFilter 加星状态过滤
func starredFilter(want *bool) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		if want == nil {
			return mails
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if m.Starred == *want {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}

// subjectFilter 主题包含过滤
func subjectFilter(term string) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return mails
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if containsFold(m.Subject, term) {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}

// bodyFilter 正文包含过滤
func bodyFilter(term string) Filter {
	return func(mails []domain.Mail) []domain.Mail {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return mails
		}
		filtered := make([]domain.Mail, 0, len(mails))
		for _, m := range mails {
			if containsFold(m.Body, term) {
				filtered = append(filtered, m)
			}
		}
		return filtered
	}
}
