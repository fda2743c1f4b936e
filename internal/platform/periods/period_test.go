package periods

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestWeekEndingFor(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{date(2025, 6, 2), "2025-06-07"},  // 月曜 → 次の土曜
		{date(2025, 6, 6), "2025-06-07"},  // 金曜
		{date(2025, 6, 7), "2025-06-07"},  // 土曜はその日が週締め
		{date(2025, 6, 8), "2025-06-14"},  // 日曜は翌週に属する
		{date(2025, 12, 29), "2026-01-03"}, // 年跨ぎ
	}
	for _, c := range cases {
		got := WeekEndingFor(c.in).Format(DateLayout)
		if got != c.want {
			t.Errorf("WeekEndingFor(%s) = %s, want %s", c.in.Format(DateLayout), got, c.want)
		}
	}
}

func TestDayTabFor(t *testing.T) {
	tab, ok := DayTabFor(date(2025, 6, 2))
	if !ok || tab != "Monday" {
		t.Errorf("Monday: got (%q, %v)", tab, ok)
	}
	tab, ok = DayTabFor(date(2025, 6, 7))
	if !ok || tab != "Saturday" {
		t.Errorf("Saturday: got (%q, %v)", tab, ok)
	}
	// 日曜にタブは無い
	if tab, ok := DayTabFor(date(2025, 6, 8)); ok {
		t.Errorf("Sunday should have no tab, got %q", tab)
	}
}

func TestDayTabs(t *testing.T) {
	want := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if len(DayTabs) != len(want) {
		t.Fatalf("DayTabs = %v", DayTabs)
	}
	for i := range want {
		if DayTabs[i] != want[i] {
			t.Errorf("DayTabs[%d] = %q, want %q", i, DayTabs[i], want[i])
		}
	}
}

func TestSheetTitle(t *testing.T) {
	got := SheetTitle(date(2025, 6, 7))
	if got != "Misses Week Ending 2025-06-07" {
		t.Errorf("SheetTitle = %q", got)
	}
}
