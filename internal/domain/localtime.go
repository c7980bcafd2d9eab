package domain

import (
	"bytes"
	"time"
)

// localTimeLayout 时间字段统一的 JSON 文本格式（ISO 本地时间，不带时区）
const localTimeLayout = "2006-01-02T15:04:05"

// LocalTime 封装 time.Time，按固定的本地时间格式做 JSON 编解码。
// 零值序列化为 null，反序列化 null/空串得到零值。
type LocalTime struct {
	time.Time
}

// NewLocalTime 从 time.Time 创建 LocalTime
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Time: t}
}

// Now 返回当前时刻的 LocalTime
func Now() LocalTime {
	return LocalTime{Time: time.Now()}
}

var jsonNull = []byte("null")

// MarshalJSON 实现 json.Marshaler
func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return jsonNull, nil
	}
	b := make([]byte, 0, len(localTimeLayout)+2)
	b = append(b, '"')
	b = t.AppendFormat(b, localTimeLayout)
	b = append(b, '"')
	return b, nil
}

// UnmarshalJSON 实现 json.Unmarshaler
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) || len(data) <= 2 {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(localTimeLayout, string(data[1:len(data)-1]), time.Local)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
