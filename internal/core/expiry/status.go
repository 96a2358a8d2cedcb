// Package expiry 食材到期分類
package expiry

import (
	"fmt"
	"time"
)

// Kind 到期狀態種類
type Kind int

const (
	NoExpiry Kind = iota
	Fresh
	ExpiringThisWeek
	ExpiringSoon
	ExpiringToday
	Expired
)

// 分類門檻（天）
const (
	SoonDays     = 3
	ThisWeekDays = 7
)

var kindNames = map[Kind]string{
	NoExpiry:         "NO_EXPIRY",
	Fresh:            "FRESH",
	ExpiringThisWeek: "EXPIRING_THIS_WEEK",
	ExpiringSoon:     "EXPIRING_SOON",
	ExpiringToday:    "EXPIRING_TODAY",
	Expired:          "EXPIRED",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText 以名稱序列化
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Status 到期狀態
//
// Days 對 Fresh/ExpiringThisWeek/ExpiringSoon 為剩餘天數，對 Expired 為逾期天數，
// 其餘種類為 0。
type Status struct {
	Kind Kind `json:"kind"`
	Days int  `json:"days"`
}

// Classify 使用系統時區判斷到期狀態
func Classify(expiry *int64, nowMs int64) Status {
	return ClassifyIn(expiry, nowMs, time.Local)
}

// ClassifyIn 使用指定時區的日曆日期判斷到期狀態
func ClassifyIn(expiry *int64, nowMs int64, loc *time.Location) Status {
	if expiry == nil {
		return Status{Kind: NoExpiry}
	}
	return fromDays(DaysUntil(*expiry, nowMs, loc))
}

func fromDays(days int) Status {
	switch {
	case days < 0:
		return Status{Kind: Expired, Days: -days}
	case days == 0:
		return Status{Kind: ExpiringToday}
	case days <= SoonDays:
		return Status{Kind: ExpiringSoon, Days: days}
	case days <= ThisWeekDays:
		return Status{Kind: ExpiringThisWeek, Days: days}
	default:
		return Status{Kind: Fresh, Days: days}
	}
}

// DaysUntil 計算 now 到 expiry 之間跨越的日曆日數（可為負）
func DaysUntil(expiryMs, nowMs int64, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	from := calendarDate(time.UnixMilli(nowMs).In(loc))
	to := calendarDate(time.UnixMilli(expiryMs).In(loc))
	// 以日序相減，不經 time.Duration（上限約 292 年）
	return int(to.Unix()/secondsPerDay - from.Unix()/secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// calendarDate 取當地年月日，以 UTC 午夜表示，避開 DST 造成的 23/25 小時日
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsExpired 已逾期（不含今天）
func (s Status) IsExpired() bool {
	return s.Kind == Expired
}

// ExpiresWithin 今天起 n 天內到期（含今天），已逾期或無期限不算
func (s Status) ExpiresWithin(n int) bool {
	switch s.Kind {
	case ExpiringToday:
		return n >= 0
	case ExpiringSoon, ExpiringThisWeek, Fresh:
		return s.Days <= n
	default:
		return false
	}
}
