package mailfilter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"webmail/backend/internal/domain"
)

func mailAt(id int, ts time.Time) domain.Mail {
	return domain.Mail{ID: id, Timestamp: domain.NewLocalTime(ts)}
}

func TestApply_NilCriteria(t *testing.T) {
	mails := []domain.Mail{{ID: 1}, {ID: 2}}

	result := Apply(mails, nil)
	assert.Equal(t, mails, result)
}

func TestApply_EmptyCriteria(t *testing.T) {
	mails := []domain.Mail{{ID: 1}, {ID: 2}}

	// All predicates unset, every link passes through
	result := Apply(mails, &domain.FilterCriteria{})
	assert.Len(t, result, 2)
}

func TestApply_SearchTerm(t *testing.T) {
	mails := []domain.Mail{
		{ID: 1, Subject: "Quarterly Report"},
		{ID: 2, Body: "the report is attached"},
		{ID: 3, From: "report-bot"},
		{ID: 4, Subject: "lunch"},
	}

	result := Apply(mails, &domain.FilterCriteria{SearchTerm: "REPORT"})
	assert.Len(t, result, 3)
	for _, m := range result {
		assert.NotEqual(t, 4, m.ID)
	}
}

func TestApply_DateRange(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mails := []domain.Mail{
		mailAt(1, day.Add(9*time.Hour)),
		mailAt(2, day.Add(23*time.Hour+30*time.Minute)), // 当天深夜
		mailAt(3, day.AddDate(0, 0, 1).Add(time.Hour)),  // 次日
		{ID: 4}, // 无时间戳
	}

	from := day
	to := day
	result := Apply(mails, &domain.FilterCriteria{DateFrom: &from, DateTo: &to})

	// dateTo 延展到当天 23:59:59，所以深夜邮件保留
	assert.Len(t, result, 2)
	assert.Equal(t, 1, result[0].ID)
	assert.Equal(t, 2, result[1].ID)
}

func TestApply_DateRange_ExcludesZeroTimestamp(t *testing.T) {
	from := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	mails := []domain.Mail{
		{ID: 1},
		mailAt(2, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
	}

	result := Apply(mails, &domain.FilterCriteria{DateFrom: &from})
	assert.Len(t, result, 1)
	assert.Equal(t, 2, result[0].ID)
}

func TestApply_Priority(t *testing.T) {
	mails := []domain.Mail{
		{ID: 1, Priority: domain.PriorityLow},
		{ID: 2, Priority: domain.PriorityHigh},
		{ID: 3, Priority: domain.PriorityUrgent},
	}

	result := Apply(mails, &domain.FilterCriteria{
		Priority: []int{domain.PriorityHigh, domain.PriorityUrgent},
	})

	// 输入顺序保持不变
	assert.Len(t, result, 2)
	assert.Equal(t, 2, result[0].ID)
	assert.Equal(t, 3, result[1].ID)
}

func TestApply_AttachmentAndStarred(t *testing.T) {
	yes := true
	mails := []domain.Mail{
		{ID: 1, HasAttachment: true, Starred: true},
		{ID: 2, HasAttachment: true},
		{ID: 3, Starred: true},
	}

	result := Apply(mails, &domain.FilterCriteria{HasAttachment: &yes, IsStarred: &yes})
	assert.Len(t, result, 1)
	assert.Equal(t, 1, result[0].ID)
}

func TestApply_Conjunction(t *testing.T) {
	// 多个条件同时设置时为交集
	mails := []domain.Mail{
		{ID: 1, From: "alice@example.com", Subject: "invoice"},
		{ID: 2, From: "alice@example.com", Subject: "hello"},
		{ID: 3, From: "bob@example.com", Subject: "invoice"},
	}

	result := Apply(mails, &domain.FilterCriteria{
		Sender:          "alice",
		SubjectContains: "invoice",
	})
	assert.Len(t, result, 1)
	assert.Equal(t, 1, result[0].ID)
}

func TestApply_SubjectAndBodyFields(t *testing.T) {
	mails := []domain.Mail{
		{ID: 1, Subject: "project update", Body: "see details"},
		{ID: 2, Subject: "other", Body: "project status"},
	}

	// 字段级过滤只看自己的字段
	result := Apply(mails, &domain.FilterCriteria{SubjectContains: "project"})
	assert.Len(t, result, 1)
	assert.Equal(t, 1, result[0].ID)

	result = Apply(mails, &domain.FilterCriteria{BodyContains: "project"})
	assert.Len(t, result, 1)
	assert.Equal(t, 2, result[0].ID)
}

func TestHasActiveFilters(t *testing.T) {
	assert.False(t, HasActiveFilters(&domain.FilterCriteria{}))

	yes := true
	assert.True(t, HasActiveFilters(&domain.FilterCriteria{IsStarred: &yes}))
	assert.True(t, HasActiveFilters(&domain.FilterCriteria{SearchTerm: "x"}))
}
