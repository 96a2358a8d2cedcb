package expiry

import "fmt"

// Severity 顯示嚴重程度
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityFresh    Severity = "fresh"
)

// 顯示顏色（ARGB）
const (
	ColorCritical uint32 = 0xFFEF4444
	ColorWarning  uint32 = 0xFFF59E0B
	ColorFresh    uint32 = 0xFF10B981
)

// CriticalDays 剩餘天數在此以內視為緊急
const CriticalDays = 1

// Badge 到期標籤
type Badge struct {
	Label    string   `json:"label"`
	Color    uint32   `json:"color"`
	Hex      string   `json:"hex"`
	Severity Severity `json:"severity"`
}

// Badge 依狀態產生顯示用的標籤與顏色
func (s Status) Badge() Badge {
	sev := s.severity()
	b := Badge{Label: s.Label(), Severity: sev}
	switch sev {
	case SeverityCritical:
		b.Color = ColorCritical
	case SeverityWarning:
		b.Color = ColorWarning
	default:
		b.Color = ColorFresh
	}
	b.Hex = fmt.Sprintf("#%06X", b.Color&0xFFFFFF)
	return b
}

func (s Status) severity() Severity {
	switch s.Kind {
	case Expired, ExpiringToday:
		return SeverityCritical
	case ExpiringSoon:
		if s.Days <= CriticalDays {
			return SeverityCritical
		}
		return SeverityWarning
	default:
		return SeverityFresh
	}
}

// Label 人類可讀的到期描述
func (s Status) Label() string {
	switch s.Kind {
	case NoExpiry:
		return "No expiry"
	case Expired:
		if s.Days == 1 {
			return "Expired 1 day ago"
		}
		return fmt.Sprintf("Expired %d days ago", s.Days)
	case ExpiringToday:
		return "Expires today"
	case ExpiringSoon, ExpiringThisWeek:
		if s.Days == 1 {
			return "Expires tomorrow"
		}
		return fmt.Sprintf("Expires in %d days", s.Days)
	default:
		return "Fresh"
	}
}
