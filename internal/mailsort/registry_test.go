package mailsort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"webmail/backend/internal/domain"
)

func ts(day int) domain.LocalTime {
	return domain.NewLocalTime(time.Date(2025, 6, day, 12, 0, 0, 0, time.UTC))
}

func ids(mails []domain.Mail) []int {
	out := make([]int, len(mails))
	for i, m := range mails {
		out[i] = m.ID
	}
	return out
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(nil)
	assert.Equal(t, []string{
		"date-asc", "date-desc",
		"priority-asc", "priority-desc",
		"sender-asc", "sender-desc",
		"subject-asc", "subject-desc",
	}, r.Names())
}

func TestSort_DateDesc(t *testing.T) {
	r := NewRegistry(nil)
	mails := []domain.Mail{
		{ID: 1, Timestamp: ts(1)},
		{ID: 2, Timestamp: ts(15)},
		{ID: 3, Timestamp: ts(7)},
	}

	r.Sort(mails, "date-desc")
	assert.Equal(t, []int{2, 3, 1}, ids(mails))
}

func TestSort_DateAsc(t *testing.T) {
	r := NewRegistry(nil)
	mails := []domain.Mail{
		{ID: 1, Timestamp: ts(15)},
		{ID: 2, Timestamp: ts(1)},
		{ID: 3, Timestamp: ts(7)},
	}

	r.Sort(mails, "date-asc")
	assert.Equal(t, []int{2, 3, 1}, ids(mails))
}

func TestSort_ZeroTimestampLastBothDirections(t *testing.T) {
	r := NewRegistry(nil)

	// 空时间戳不能因为方向取反跑到最前面
	for _, strategy := range []string{"date-asc", "date-desc"} {
		mails := []domain.Mail{
			{ID: 1}, // 无时间戳
			{ID: 2, Timestamp: ts(5)},
			{ID: 3, Timestamp: ts(10)},
		}
		r.Sort(mails, strategy)
		assert.Equal(t, 1, mails[2].ID, "strategy %s should rank zero timestamp last", strategy)
	}
}

func TestSort_EmptySenderLastBothDirections(t *testing.T) {
	r := NewRegistry(nil)

	for _, strategy := range []string{"sender-asc", "sender-desc"} {
		mails := []domain.Mail{
			{ID: 1, From: ""},
			{ID: 2, From: "alice"},
			{ID: 3, From: "bob"},
		}
		r.Sort(mails, strategy)
		assert.Equal(t, 1, mails[2].ID, "strategy %s should rank empty sender last", strategy)
	}
}

func TestSort_SenderCaseInsensitive(t *testing.T) {
	r := NewRegistry(nil)
	mails := []domain.Mail{
		{ID: 1, From: "Bob@example.com"},
		{ID: 2, From: "alice@example.com"},
	}

	r.Sort(mails, "sender-asc")
	assert.Equal(t, []int{2, 1}, ids(mails))
}

func TestSort_PriorityAsc(t *testing.T) {
	r := NewRegistry(nil)
	mails := []domain.Mail{
		{ID: 1, Priority: domain.PriorityLow},
		{ID: 2, Priority: domain.PriorityUrgent},
		{ID: 3, Priority: domain.PriorityMedium},
	}

	// 升序：紧急（1）在前
	r.Sort(mails, "priority-asc")
	assert.Equal(t, []int{2, 3, 1}, ids(mails))
}

func TestSort_Stable(t *testing.T) {
	r := NewRegistry(nil)
	same := ts(3)
	mails := []domain.Mail{
		{ID: 1, Timestamp: same},
		{ID: 2, Timestamp: same},
		{ID: 3, Timestamp: same},
	}

	r.Sort(mails, "date-desc")
	assert.Equal(t, []int{1, 2, 3}, ids(mails))
}

func TestSort_UnknownStrategyFallsBackToDateDesc(t *testing.T) {
	r := NewRegistry(nil)

	mails := []domain.Mail{
		{ID: 1, Timestamp: ts(1)},
		{ID: 2, Timestamp: ts(9)},
	}
	expected := []domain.Mail{
		{ID: 1, Timestamp: ts(1)},
		{ID: 2, Timestamp: ts(9)},
	}
	r.Sort(expected, DefaultStrategy)

	r.Sort(mails, "no-such-strategy")
	assert.Equal(t, ids(expected), ids(mails))
}

func TestSort_EmptyList(t *testing.T) {
	r := NewRegistry(nil)
	assert.Empty(t, r.Sort(nil, "date-desc"))
}
