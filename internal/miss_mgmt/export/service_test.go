package export

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"MSM-backend/internal/miss_mgmt/lifecycle"
	"MSM-backend/internal/miss_mgmt/misses"
)

type fakeRecords struct {
	rows map[string][]misses.Miss // "weekEnding|dayTab"
}

func (f *fakeRecords) ListWeek(ctx context.Context, weekEnding string, tabs []string) (map[string][]misses.Miss, error) {
	out := map[string][]misses.Miss{}
	for _, tab := range tabs {
		out[tab] = f.rows[weekEnding+"|"+tab]
	}
	return out, nil
}

type fakeTabs struct {
	tabs map[string][]string
}

func (f *fakeTabs) ListTabs(ctx context.Context, weekEnding string) ([]string, error) {
	return f.tabs[weekEnding], nil
}

func sampleMiss(addr string) misses.Miss {
	return misses.Miss{
		MissULID:      "01TESTULID",
		Date:          "2025-06-02",
		SubmittedBy:   "city-user",
		TimeCalledIn:  "09:05 AM",
		Zone:          "Monday 1",
		TimeSentToOps: time.Date(2025, 6, 2, 10, 30, 0, 0, time.UTC),
		Address:       addr,
		ServiceType:   "MSW",
		Route:         "M-1",
		Status:        lifecycle.StatusPickedUp,
		ImageRef:      sql.NullString{String: "N/A", Valid: true},
		TimesMissed:   2,
		LastMissed:    "2025-05-12",
	}
}

func TestExportWeek_BuildsOneSheetPerTab(t *testing.T) {
	records := &fakeRecords{rows: map[string][]misses.Miss{
		"2025-06-07|Monday":  {sampleMiss("42 Mill Rd"), sampleMiss("7 Oak St")},
		"2025-06-07|Tuesday": {},
	}}
	tabs := &fakeTabs{tabs: map[string][]string{
		"2025-06-07": {"Monday", "Tuesday"},
	}}
	svc := NewService(records, tabs, time.UTC)

	buf, filename, err := svc.ExportWeek(context.Background(), "2025-06-02")
	if err != nil {
		t.Fatalf("ExportWeek: %v", err)
	}
	if filename != "misses_week_ending_2025-06-07.xlsx" {
		t.Errorf("filename = %q", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Monday" || sheets[1] != "Tuesday" {
		t.Fatalf("sheets = %v, want [Monday Tuesday]", sheets)
	}

	// ヘッダー行
	header, err := f.GetRows("Monday")
	if err != nil {
		t.Fatal(err)
	}
	if len(header) != 3 { // ヘッダー + 2行
		t.Fatalf("Monday rows = %d, want 3", len(header))
	}
	if header[0][0] != "Date" || header[0][6] != "Address" {
		t.Errorf("header = %v", header[0])
	}
	if header[1][6] != "42 Mill Rd" || header[2][6] != "7 Oak St" {
		t.Errorf("data rows = %v / %v", header[1], header[2])
	}
	// Collection Status 列
	if header[1][15] != "Picked Up" {
		t.Errorf("status cell = %q, want Picked Up", header[1][15])
	}

	// 空タブはヘッダーのみ
	tue, err := f.GetRows("Tuesday")
	if err != nil {
		t.Fatal(err)
	}
	if len(tue) != 1 {
		t.Errorf("Tuesday rows = %d, want header only", len(tue))
	}
}

func TestExportWeek_UnprovisionedWeekIs404(t *testing.T) {
	svc := NewService(&fakeRecords{}, &fakeTabs{}, time.UTC)

	_, _, err := svc.ExportWeek(context.Background(), "2025-06-02")
	if toHTTPStatus(err) != 404 {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestExportWeek_BadWeekEnding(t *testing.T) {
	svc := NewService(&fakeRecords{}, &fakeTabs{}, time.UTC)

	_, _, err := svc.ExportWeek(context.Background(), "06/02/2025")
	if toHTTPStatus(err) != 400 {
		t.Errorf("err = %v, want invalid argument", err)
	}
}
