package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	"MSM-backend/internal/miss_mgmt/misses"
	"MSM-backend/internal/platform/periods"
)

// ===== Error model (misses と同型) =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func errInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func errNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func errInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

// RecordLister: 週次ログ全タブの一貫スナップショット読み出し
type RecordLister interface {
	ListWeek(ctx context.Context, weekEnding string, tabs []string) (map[string][]misses.Miss, error)
}

type TabLister interface {
	ListTabs(ctx context.Context, weekEnding string) ([]string, error)
}

type Service struct {
	records RecordLister
	tabs    TabLister
	loc     *time.Location
}

func NewService(records RecordLister, tabs TabLister, loc *time.Location) *Service {
	return &Service{records: records, tabs: tabs, loc: loc}
}

// ExportWeek は指定週の各曜日タブを 1 シートずつ持つ xlsx を組み立てる。
// weekEnding が空のときは今日を含む週（土曜締め）を対象にする。
func (s *Service) ExportWeek(ctx context.Context, weekEnding string) (*bytes.Buffer, string, error) {
	var we time.Time
	if weekEnding == "" {
		we = periods.WeekEndingFor(time.Now().In(s.loc))
	} else {
		parsed, err := time.ParseInLocation(periods.DateLayout, weekEnding, s.loc)
		if err != nil {
			return nil, "", errInvalid("week_ending must be YYYY-MM-DD")
		}
		we = periods.WeekEndingFor(parsed)
	}
	weStr := we.Format(periods.DateLayout)

	tabs, err := s.tabs.ListTabs(ctx, weStr)
	if err != nil {
		return nil, "", errInternal("failed to list day tabs")
	}
	if len(tabs) == 0 {
		return nil, "", errNotFound(fmt.Sprintf("week ending %s is not provisioned", weStr))
	}

	week, err := s.records.ListWeek(ctx, weStr, tabs)
	if err != nil {
		log.Printf("[WARN] export: list week %s: %v", weStr, err)
		return nil, "", errInternal("failed to read weekly records")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for _, tab := range tabs {
		if _, err := f.NewSheet(tab); err != nil {
			return nil, "", errInternal("failed to create sheet " + tab)
		}

		f.SetColWidth(tab, "A", "A", 6)
		f.SetColWidth(tab, "B", colName(len(misses.ReportColumns)-1), 16)

		for i, col := range misses.ReportColumns {
			f.SetCellValue(tab, cell(colName(i), 1), col)
		}
		f.SetCellStyle(tab, cell("A", 1), cell(colName(len(misses.ReportColumns)-1), 1), headerStyle)

		records := week[tab]
		row := 2
		for i := range records {
			for j, val := range records[i].ReportRow() {
				f.SetCellValue(tab, cell(colName(j), row), val)
			}
			row++
		}
	}
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(tabs[0]); err == nil {
		f.SetActiveSheet(idx)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		log.Printf("[WARN] export: write workbook: %v", err)
		return nil, "", errInternal("failed to generate workbook")
	}

	filename := fmt.Sprintf("misses_week_ending_%s.xlsx", weStr)
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
