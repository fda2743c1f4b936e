package reference

import "database/sql"

// AddressEntry は住所リスト1行。サービス種別ごとにゾーンとルートを持つ。
// ゾーン名は "Monday A" のように回収曜日を含む（並び順の手掛かりにする）。
type AddressEntry struct {
	AddressID   int64
	Address     string
	MSWZone     sql.NullString
	MSWRoute    sql.NullString
	SSZone      sql.NullString
	SSRoute     sql.NullString
	SSZoneColor sql.NullString // ゾーンカラーは SS のみ
	YWZone      sql.NullString
	YWRoute     sql.NullString
}

// zoneOf: サービス種別に対応するゾーン名
func (e *AddressEntry) zoneOf(serviceType string) string {
	switch serviceType {
	case "MSW":
		return e.MSWZone.String
	case "SS":
		return e.SSZone.String
	case "YW":
		return e.YWZone.String
	}
	return ""
}

func (e *AddressEntry) routeOf(serviceType string) string {
	switch serviceType {
	case "MSW":
		return e.MSWRoute.String
	case "SS":
		return e.SSRoute.String
	case "YW":
		return e.YWRoute.String
	}
	return ""
}

type ZoneResponse struct {
	Zone    string `json:"zone"`
	Default bool   `json:"default"` // 画面の初期選択（前日回収分のゾーン）
}

type RouteResponse struct {
	Address   string `json:"address"`
	Route     string `json:"route"`
	Zone      string `json:"zone"`
	ZoneColor string `json:"zone_color,omitempty"`
}
