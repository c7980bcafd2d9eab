// Package mailsort 实现按名称选择的邮件排序策略表。
// 策略键形如 <field>-<asc|desc>，未知键回退到 date-desc。
package mailsort

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"webmail/backend/internal/domain"
)

// DefaultStrategy 未知或空策略名时的回退策略
const DefaultStrategy = "date-desc"

// lessFunc 稳定排序用的比较函数
type lessFunc func(a, b domain.Mail) bool

// Registry 名称到排序策略的注册表。
type Registry struct {
	strategies map[string]lessFunc
	log        *zap.Logger
}

// NewRegistry 创建并预注册全部 8 个策略。
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{
		strategies: make(map[string]lessFunc, 8),
		log:        log,
	}
	r.register("date-asc", byDate(true))
	r.register("date-desc", byDate(false))
	r.register("sender-asc", bySender(true))
	r.register("sender-desc", bySender(false))
	r.register("subject-asc", bySubject(true))
	r.register("subject-desc", bySubject(false))
	r.register("priority-asc", byPriority(true))
	r.register("priority-desc", byPriority(false))
	return r
}

func (r *Registry) register(name string, less lessFunc) {
	r.strategies[name] = less
}

// Names 返回所有已注册的策略名
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sort 按指定策略就地稳定排序。空列表为空操作；
// 未知策略名记一条非致命日志并回退到 date-desc。
func (r *Registry) Sort(mails []domain.Mail, name string) []domain.Mail {
	if len(mails) == 0 {
		return mails
	}
	less, ok := r.strategies[name]
	if !ok {
		r.log.Warn("unknown sort strategy, falling back to default",
			zap.String("strategy", name),
			zap.String("fallback", DefaultStrategy),
		)
		less = r.strategies[DefaultStrategy]
	}
	sort.SliceStable(mails, func(i, j int) bool {
		return less(mails[i], mails[j])
	})
	return mails
}

// byDate 按时间戳排序。零值时间戳在两个方向上都排在最后，
// 不能对 null-last 比较器简单取反，否则空值会跑到最前面。
func byDate(ascending bool) lessFunc {
	return func(a, b domain.Mail) bool {
		aZero, bZero := a.Timestamp.IsZero(), b.Timestamp.IsZero()
		switch {
		case aZero && bZero:
			return false
		case aZero:
			return false
		case bZero:
			return true
		}
		if ascending {
			return a.Timestamp.Before(b.Timestamp.Time)
		}
		return b.Timestamp.Before(a.Timestamp.Time)
	}
}

// bySender 按发件人大小写不敏感排序，空值两个方向都排最后。
func bySender(ascending bool) lessFunc {
	return byString(ascending, func(m domain.Mail) string { return m.From })
}

// bySubject 按主题大小写不敏感排序，空值两个方向都排最后。
func bySubject(ascending bool) lessFunc {
	return byString(ascending, func(m domain.Mail) string { return m.Subject })
}

func byString(ascending bool, key func(domain.Mail) string) lessFunc {
	return func(a, b domain.Mail) bool {
		av, bv := key(a), key(b)
		aEmpty, bEmpty := av == "", bv == ""
		switch {
		case aEmpty && bEmpty:
			return false
		case aEmpty:
			return false
		case bEmpty:
			return true
		}
		al, bl := strings.ToLower(av), strings.ToLower(bv)
		if ascending {
			return al < bl
		}
		return bl < al
	}
}

// byPriority 按优先级数值排序，升序为 1（紧急）在前。
func byPriority(ascending bool) lessFunc {
	return func(a, b domain.Mail) bool {
		if ascending {
			return a.Priority < b.Priority
		}
		return b.Priority < a.Priority
	}
}
