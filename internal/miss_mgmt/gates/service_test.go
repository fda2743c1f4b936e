package gates

import (
	"context"
	"testing"
	"time"

	"MSM-backend/internal/miss_mgmt/lifecycle"
)

// メモリ上のフェイクストア
type fakeGateStore struct {
	rows map[string]Gate // "date|serviceType"
}

func newFakeGateStore() *fakeGateStore {
	return &fakeGateStore{rows: map[string]Gate{}}
}

func gkey(date, st string) string { return date + "|" + st }

func (f *fakeGateStore) Get(ctx context.Context, gateDate, serviceType string) (*Gate, error) {
	g, ok := f.rows[gkey(gateDate, serviceType)]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeGateStore) ListForDate(ctx context.Context, gateDate string) ([]Gate, error) {
	var out []Gate
	for _, st := range gateServiceTypes {
		if g, ok := f.rows[gkey(gateDate, st)]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGateStore) MarkComplete(ctx context.Context, gateDate, serviceType, actor string) (Gate, error) {
	now := time.Now().UTC()
	g := Gate{
		GateDate:    gateDate,
		ServiceType: serviceType,
		Status:      lifecycle.GateComplete,
		CompletedAt: &now,
		CompletedBy: &actor,
	}
	f.rows[gkey(gateDate, serviceType)] = g
	return g, nil
}

func (f *fakeGateStore) ClearDay(ctx context.Context, gateDate string, serviceTypes []string) error {
	for _, st := range serviceTypes {
		f.rows[gkey(gateDate, st)] = Gate{
			GateDate:    gateDate,
			ServiceType: st,
			Status:      lifecycle.GateNotComplete,
		}
	}
	return nil
}

// 固定時刻クロック
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newGateTestService() (*Service, *fakeGateStore) {
	store := newFakeGateStore()
	svc := NewServiceWithStore(store, time.UTC)
	svc.clock = fixedClock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	return svc, store
}

func TestGateFor_AbsentMeansNoGate(t *testing.T) {
	svc, _ := newGateTestService()

	status, exists, err := svc.GateFor(context.Background(), "2025-06-02", "MSW")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Errorf("exists = true, want false for an untracked day (status %q)", status)
	}
}

func TestGateFor_ReflectsStoredStatus(t *testing.T) {
	svc, store := newGateTestService()
	store.ClearDay(context.Background(), "2025-06-02", gateServiceTypes)

	status, exists, err := svc.GateFor(context.Background(), "2025-06-02", "MSW")
	if err != nil {
		t.Fatal(err)
	}
	if !exists || status != lifecycle.GateNotComplete {
		t.Errorf("got (%q, %v), want (Not Complete, true)", status, exists)
	}

	store.MarkComplete(context.Background(), "2025-06-02", "MSW", "ops-user")
	status, exists, _ = svc.GateFor(context.Background(), "2025-06-02", "MSW")
	if !exists || status != lifecycle.GateComplete {
		t.Errorf("got (%q, %v), want (Complete, true)", status, exists)
	}
}

func TestMarkComplete(t *testing.T) {
	svc, _ := newGateTestService()

	res, err := svc.MarkComplete(context.Background(), MarkCompleteRequest{
		GateDate: "2025-06-02", ServiceType: "SS",
	}, "ops-user")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != string(lifecycle.GateComplete) {
		t.Errorf("status = %q, want Complete", res.Status)
	}
	if res.CompletedBy == nil || *res.CompletedBy != "ops-user" {
		t.Errorf("completed_by = %v", res.CompletedBy)
	}
}

func TestMarkComplete_Validation(t *testing.T) {
	svc, _ := newGateTestService()

	_, err := svc.MarkComplete(context.Background(), MarkCompleteRequest{
		GateDate: "2025-06-02", ServiceType: "TRASH",
	}, "ops-user")
	if toHTTPStatus(err) != 400 {
		t.Errorf("unknown service type: err = %v", err)
	}

	_, err = svc.MarkComplete(context.Background(), MarkCompleteRequest{
		GateDate: "06/02/2025", ServiceType: "MSW",
	}, "ops-user")
	if toHTTPStatus(err) != 400 {
		t.Errorf("bad date format: err = %v", err)
	}
}

func TestClearDay_ResetsAllServiceTypes(t *testing.T) {
	svc, _ := newGateTestService()
	svc.MarkComplete(context.Background(), MarkCompleteRequest{GateDate: "2025-06-02", ServiceType: "MSW"}, "ops-user")

	rows, err := svc.ClearDay(context.Background(), ClearDayRequest{GateDate: "2025-06-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(gateServiceTypes) {
		t.Fatalf("rows = %d, want %d", len(rows), len(gateServiceTypes))
	}
	for _, g := range rows {
		if g.Status != string(lifecycle.GateNotComplete) {
			t.Errorf("%s status = %q, want Not Complete", g.ServiceType, g.Status)
		}
	}
}

func TestListForDate_TodayAlias(t *testing.T) {
	svc, store := newGateTestService()
	// newGateTestService のクロックは 2025-06-02 固定
	store.ClearDay(context.Background(), "2025-06-02", gateServiceTypes)

	rows, err := svc.ListForDate(context.Background(), "today")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != len(gateServiceTypes) {
		t.Errorf("rows = %d, want %d", len(rows), len(gateServiceTypes))
	}
	for _, g := range rows {
		if g.GateDate != "2025-06-02" {
			t.Errorf("gate_date = %q, want clock-resolved 2025-06-02", g.GateDate)
		}
	}
}

func TestResolveDate_TodayUsesClockAndLocation(t *testing.T) {
	store := newFakeGateStore()
	svc := NewServiceWithStore(store, time.FixedZone("UTC-5", -5*3600))
	// UTC では既に 6/3 だがローカルではまだ 6/2
	svc.clock = fixedClock{t: time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC)}

	d, err := svc.resolveDate("today")
	if err != nil {
		t.Fatal(err)
	}
	if d != "2025-06-02" {
		t.Errorf("resolved = %q, want 2025-06-02 in local time", d)
	}
}
