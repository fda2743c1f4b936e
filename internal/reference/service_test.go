package reference

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

type fakeAddressStore struct {
	entries []AddressEntry
}

func (f *fakeAddressStore) ListAll(ctx context.Context) ([]AddressEntry, error) {
	return f.entries, nil
}

func (f *fakeAddressStore) GetByAddress(ctx context.Context, address string) (*AddressEntry, error) {
	for i := range f.entries {
		if f.entries[i].Address == address {
			return &f.entries[i], nil
		}
	}
	return nil, nil
}

func ns(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func testEntries() []AddressEntry {
	return []AddressEntry{
		{
			Address:  "42 Mill Rd",
			MSWZone:  ns("Wednesday 2"),
			MSWRoute: ns("W-12"),
			SSZone:   ns("Monday B"),
			SSRoute:  ns("S-3"),
			SSZoneColor: ns("Blue"),
			YWZone:   ns("Friday 1"),
			YWRoute:  ns("Y-7"),
		},
		{
			Address:  "7 Oak St",
			MSWZone:  ns("Monday 1"),
			MSWRoute: ns("M-1"),
			SSZone:   ns("Thursday A"),
			SSRoute:  ns("S-9"),
			SSZoneColor: ns("Green"),
		},
		{
			Address:  "3 Pine Ave",
			MSWZone:  ns("Monday 1"), // 7 Oak St と同ゾーン
			MSWRoute: ns("M-2"),
		},
	}
}

func newRefTestService() *Service {
	return NewServiceWithStore(&fakeAddressStore{entries: testEntries()}, time.UTC)
}

func TestListZones_OrderedByCollectionDay(t *testing.T) {
	svc := newRefTestService()

	zones, err := svc.ListZones(context.Background(), "MSW")
	if err != nil {
		t.Fatal(err)
	}
	// 重複ゾーンは1件に畳む
	if len(zones) != 2 {
		t.Fatalf("zones = %+v, want 2 distinct", zones)
	}
	if zones[0].Zone != "Monday 1" || zones[1].Zone != "Wednesday 2" {
		t.Errorf("order = [%s, %s], want Monday before Wednesday", zones[0].Zone, zones[1].Zone)
	}

	// 既定選択はちょうど1件
	defaults := 0
	for _, z := range zones {
		if z.Default {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("defaults = %d, want exactly 1", defaults)
	}
}

func TestListZones_UnknownServiceType(t *testing.T) {
	svc := newRefTestService()
	if _, err := svc.ListZones(context.Background(), "TRASH"); toHTTPStatus(err) != 400 {
		t.Errorf("err = %v, want invalid argument", err)
	}
}

func TestListAddresses(t *testing.T) {
	svc := newRefTestService()

	addrs, err := svc.ListAddresses(context.Background(), "MSW", "Monday 1")
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 2 || addrs[0] != "3 Pine Ave" || addrs[1] != "7 Oak St" {
		t.Errorf("addrs = %v, want sorted [3 Pine Ave, 7 Oak St]", addrs)
	}
}

func TestResolve_SSCarriesZoneColor(t *testing.T) {
	svc := newRefTestService()

	r, err := svc.Resolve(context.Background(), "42 Mill Rd", "SS")
	if err != nil {
		t.Fatal(err)
	}
	if r.Route != "S-3" || r.Zone != "Monday B" || r.ZoneColor != "Blue" {
		t.Errorf("resolved = %+v", r)
	}

	// SS 以外はゾーンカラーを返さない
	r, err = svc.Resolve(context.Background(), "42 Mill Rd", "MSW")
	if err != nil {
		t.Fatal(err)
	}
	if r.ZoneColor != "" {
		t.Errorf("MSW zone color = %q, want empty", r.ZoneColor)
	}
}

func TestResolve_UnknownAddress(t *testing.T) {
	svc := newRefTestService()
	_, err := svc.Resolve(context.Background(), "99 Nowhere Ln", "MSW")
	if toHTTPStatus(err) != 404 {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestRouteFor(t *testing.T) {
	svc := newRefTestService()

	route, color, err := svc.RouteFor(context.Background(), "7 Oak St", "SS")
	if err != nil {
		t.Fatal(err)
	}
	if route != "S-9" || color != "Green" {
		t.Errorf("got (%q, %q), want (S-9, Green)", route, color)
	}
}
