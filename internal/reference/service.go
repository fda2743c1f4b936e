package reference

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ===== Error model =====

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

type AddressStore interface {
	ListAll(ctx context.Context) ([]AddressEntry, error)
	GetByAddress(ctx context.Context, address string) (*AddressEntry, error)
}

type Service struct {
	store AddressStore
	loc   *time.Location
}

func NewService(conn *sql.DB, loc *time.Location) *Service {
	return &Service{store: NewStore(conn), loc: loc}
}

func NewServiceWithStore(store AddressStore, loc *time.Location) *Service {
	return &Service{store: store, loc: loc}
}

var serviceTypes = map[string]struct{}{"MSW": {}, "SS": {}, "YW": {}}

// 回収週の並び（日曜始まり）。ゾーン名に含まれる曜日で並べる。
var weekOrder = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func weekdayIdx(zone string) int {
	lower := strings.ToLower(zone)
	for i, day := range weekOrder {
		if strings.Contains(lower, strings.ToLower(day)) {
			return i
		}
	}
	return len(weekOrder) // 曜日を持たないゾーンは末尾
}

// ListZones: サービス種別のゾーン一覧を回収曜日順で返す。
// 既定選択は「昨日が回収日だったゾーン」（漏れ報告は翌朝に入ることが多い）。
func (s *Service) ListZones(ctx context.Context, serviceType string) ([]ZoneResponse, error) {
	if _, ok := serviceTypes[serviceType]; !ok {
		return nil, errInvalid("service_type must be one of MSW, SS, YW")
	}

	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var zones []string
	for i := range entries {
		z := entries[i].zoneOf(serviceType)
		if z == "" {
			continue
		}
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		zones = append(zones, z)
	}
	sort.SliceStable(zones, func(i, j int) bool {
		wi, wj := weekdayIdx(zones[i]), weekdayIdx(zones[j])
		if wi != wj {
			return wi < wj
		}
		return zones[i] < zones[j]
	})

	yesterday := weekOrder[(int(time.Now().In(s.loc).Weekday())+6)%7]
	defaultSet := false
	out := make([]ZoneResponse, 0, len(zones))
	for _, z := range zones {
		isDefault := false
		if !defaultSet && strings.Contains(strings.ToLower(z), strings.ToLower(yesterday)) {
			isDefault = true
			defaultSet = true
		}
		out = append(out, ZoneResponse{Zone: z, Default: isDefault})
	}
	// 該当が無ければ先頭を既定にする
	if !defaultSet && len(out) > 0 {
		out[0].Default = true
	}
	return out, nil
}

// ListAddresses: ゾーン内の住所一覧（昇順）
func (s *Service) ListAddresses(ctx context.Context, serviceType, zone string) ([]string, error) {
	if _, ok := serviceTypes[serviceType]; !ok {
		return nil, errInvalid("service_type must be one of MSW, SS, YW")
	}
	if zone == "" {
		return nil, errInvalid("zone is required")
	}

	entries, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	for i := range entries {
		if entries[i].zoneOf(serviceType) == zone {
			out = append(out, entries[i].Address)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Resolve: 住所からルート等を解決する
func (s *Service) Resolve(ctx context.Context, address, serviceType string) (*RouteResponse, error) {
	if _, ok := serviceTypes[serviceType]; !ok {
		return nil, errInvalid("service_type must be one of MSW, SS, YW")
	}
	if address == "" {
		return nil, errInvalid("address is required")
	}

	e, err := s.store.GetByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errNotFound("address not in reference list: " + address)
	}

	resp := &RouteResponse{
		Address: e.Address,
		Route:   e.routeOf(serviceType),
		Zone:    e.zoneOf(serviceType),
	}
	if serviceType == "SS" {
		resp.ZoneColor = e.SSZoneColor.String
	}
	return resp, nil
}

// RouteFor は misses.ReferenceLookup の実装
func (s *Service) RouteFor(ctx context.Context, address, serviceType string) (string, string, error) {
	r, err := s.Resolve(ctx, address, serviceType)
	if err != nil {
		return "", "", err
	}
	return r.Route, r.ZoneColor, nil
}
