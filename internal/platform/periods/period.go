package periods

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// 週次ログのタブ構成（日曜は回収便が無い）
var DayTabs = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekEndingFor: 報告日が属する週の締め日（その日以降で最初の土曜日）
func WeekEndingFor(d time.Time) time.Time {
	days := (int(time.Saturday) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, days)
}

// DayTabFor: 報告日に対応するタブ名。日曜はタブが存在しない。
func DayTabFor(d time.Time) (string, bool) {
	if d.Weekday() == time.Sunday {
		return "", false
	}
	return d.Weekday().String(), true
}

// SheetTitle は週次ログの表示名（互換のため旧アプリの命名を踏襲）
func SheetTitle(weekEnding time.Time) string {
	return fmt.Sprintf("Misses Week Ending %s", weekEnding.Format(DateLayout))
}
