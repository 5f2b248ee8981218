package services

import (
	"bytes"
	"fmt"
	"time"
)

// Timestamp 接受 RFC3339 或 YYYY-MM-DD 的时间输入
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// UnmarshalJSON 解析多种时间格式
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid time %q: use RFC3339 or YYYY-MM-DD", s)
}

// ParseTimestamp 解析查询参数或表单中的时间
func ParseTimestamp(s string) (Timestamp, error) {
	var t Timestamp
	err := t.UnmarshalJSON([]byte(`"` + s + `"`))
	return t, err
}

func timePtr(t *Timestamp) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}
