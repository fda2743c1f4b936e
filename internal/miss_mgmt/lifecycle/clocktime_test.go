package lifecycle

import "testing"

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"9:15 AM", 9*60 + 15, true},
		{"09:15 AM", 9*60 + 15, true},
		{"12:00 AM", 0, true},      // 真夜中
		{"12:30 PM", 12*60 + 30, true}, // 正午すぎ
		{"11:59 PM", 23*60 + 59, true},
		{"1:05pm", 13*60 + 5, true},
		{" 10:00 AM ", 10 * 60, true},
		{"13:00 PM", 0, false}, // 24時間表記は不可
		{"0:30 AM", 0, false},
		{"9:5 AM", 0, false},
		{"9:15", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClockTime(c.in)
		if c.ok != (err == nil) {
			t.Errorf("ParseClockTime(%q) err = %v, want ok=%v", c.in, err, c.ok)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("ParseClockTime(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

// 辞書順比較の罠（"10:00 AM" < "9:00 AM"）を正規化値が解消していること
func TestParseClockTime_OrdersAcrossHourWidth(t *testing.T) {
	nine, err := ParseClockTime("9:00 AM")
	if err != nil {
		t.Fatal(err)
	}
	ten, err := ParseClockTime("10:00 AM")
	if err != nil {
		t.Fatal(err)
	}
	if !(nine < ten) {
		t.Errorf("9:00 AM (%d) should sort before 10:00 AM (%d)", nine, ten)
	}
}

func TestNormalizeClockTime(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"9:15 AM", "09:15 AM"},
		{"09:15 AM", "09:15 AM"},
		{"12:30pm", "12:30 PM"},
		{"1:05 Pm", "01:05 PM"},
	}
	for _, c := range cases {
		got, err := NormalizeClockTime(c.in)
		if err != nil {
			t.Errorf("NormalizeClockTime(%q) err: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeClockTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if _, err := NormalizeClockTime("25:00 AM"); err == nil {
		t.Error("NormalizeClockTime should reject 25:00 AM")
	}
}

func TestHistoryPointBefore(t *testing.T) {
	a := HistoryPoint{Date: "2025-06-02", CalledInMins: 600}
	b := HistoryPoint{Date: "2025-06-03", CalledInMins: 540}
	if !a.Before(b) {
		t.Error("earlier date should come first regardless of time")
	}

	// 同日は受付時刻で比較
	c1 := HistoryPoint{Date: "2025-06-02", CalledInMins: 540}
	c2 := HistoryPoint{Date: "2025-06-02", CalledInMins: 600}
	if !c1.Before(c2) || c2.Before(c1) {
		t.Error("same-day ordering should follow called-in minutes")
	}

	// 不明時刻(-1)は同日内では最古扱い
	unknown := HistoryPoint{Date: "2025-06-02", CalledInMins: -1}
	if !unknown.Before(c1) {
		t.Error("unknown time should sort before any known time on the same day")
	}
}

func TestPointOf(t *testing.T) {
	p := PointOf("2025-06-02", "9:30 AM")
	if p.CalledInMins != 9*60+30 {
		t.Errorf("CalledInMins = %d, want %d", p.CalledInMins, 9*60+30)
	}
	bad := PointOf("2025-06-02", "whenever")
	if bad.CalledInMins != -1 {
		t.Errorf("unparseable time should map to -1, got %d", bad.CalledInMins)
	}
}
