package lifecycle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 12時間表記 "H:MM AM/PM"（時は1〜2桁、先頭ゼロ任意）
var clockTimeRe = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5][0-9])\s*([AaPp][Mm])$`)

// ParseClockTime は "9:15 AM" / "09:15 AM" / "12:30 PM" 形式を
// 0時からの経過分に正規化する。12 AM = 0分、12 PM = 720分。
// 文字列のまま辞書順比較すると "10:00 AM" < "9:00 AM" になってしまうため、
// 日内の時系列比較は必ずこの正規化値で行う。
func ParseClockTime(s string) (int, error) {
	m := clockTimeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid 12-hour time: %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return hour*60 + minute, nil
}

// NormalizeClockTime は時の先頭ゼロを補って "HH:MM AM" 形式に揃える
func NormalizeClockTime(s string) (string, error) {
	m := clockTimeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("invalid 12-hour time: %q", s)
	}
	hour, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s %s", hour, m[2], strings.ToUpper(m[3])), nil
}

// HistoryPoint は (日付, 受付時刻) による日内までの時系列位置
type HistoryPoint struct {
	Date         string // "YYYY-MM-DD"（ISO表記は辞書順比較で正しく並ぶ）
	CalledInMins int    // ParseClockTime の正規化値。不明なら -1
}

// Before: a が b より厳密に前か。日付優先、同日なら受付時刻で比較。
func (a HistoryPoint) Before(b HistoryPoint) bool {
	if a.Date != b.Date {
		return a.Date < b.Date
	}
	return a.CalledInMins < b.CalledInMins
}

// PointOf は記録の日付と受付時刻文字列から HistoryPoint を作る。
// 受付時刻がパースできない古い行は -1（同日内では最古扱い）。
func PointOf(date, calledIn string) HistoryPoint {
	mins, err := ParseClockTime(calledIn)
	if err != nil {
		mins = -1
	}
	return HistoryPoint{Date: date, CalledInMins: mins}
}
