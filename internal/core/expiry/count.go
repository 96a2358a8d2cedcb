package expiry

import "time"

// Dated 具有可選到期時間的項目
type Dated interface {
	ExpiryMillis() *int64
}

// Counts 到期統計
type Counts struct {
	ExpiringSoon int `json:"expiring_soon"`
	Expired      int `json:"expired"`
}

// CountByThreshold 單次掃描統計 withinDays 天內到期與已逾期的數量
func CountByThreshold[T Dated](items []T, withinDays int, nowMs int64) Counts {
	return CountByThresholdIn(items, withinDays, nowMs, time.Local)
}

// CountByThresholdIn 同 CountByThreshold，使用指定時區
func CountByThresholdIn[T Dated](items []T, withinDays int, nowMs int64, loc *time.Location) Counts {
	var c Counts
	for _, it := range items {
		st := ClassifyIn(it.ExpiryMillis(), nowMs, loc)
		switch {
		case st.IsExpired():
			c.Expired++
		case st.ExpiresWithin(withinDays):
			c.ExpiringSoon++
		}
	}
	return c
}
