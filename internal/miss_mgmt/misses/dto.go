package misses

import "time"

// 新規報告（市側）
type SubmitMissRequest struct {
	ServiceType        string  `json:"service_type" binding:"required"`
	Zone               string  `json:"zone" binding:"required"`
	Address            string  `json:"address" binding:"required"`
	TimeCalledIn       string  `json:"time_called_in" binding:"required"` // "H:MM AM/PM"
	WholeBlock         bool    `json:"whole_block"`
	PlacementException bool    `json:"placement_exception"`
	PEAddress          *string `json:"pe_address,omitempty"`
	CityNotes          *string `json:"city_notes,omitempty"`
}

// ディスパッチ（業者側、複数選択）
type DispatchRequest struct {
	MissULIDs []string `json:"miss_ulids" binding:"required"`
}

type DispatchFailure struct {
	MissULID string `json:"miss_ulid"`
	Code     Code   `json:"code"`
	Message  string `json:"message"`
}

type DispatchResponse struct {
	Dispatched []string          `json:"dispatched"`
	Failures   []DispatchFailure `json:"failures,omitempty"`
	// ストア側のレート制限で途中打ち切りになった場合 true。
	// Dispatched には打ち切りまでに成功した分だけが入る。
	Halted     bool   `json:"halted"`
	HaltReason string `json:"halt_reason,omitempty"`
}

// 完了（業者側）。画像は multipart の "image" フィールドで別送。
type CompleteMissRequest struct {
	Outcome       string  `json:"outcome" form:"outcome" binding:"required"` // "Picked Up" 等
	DriverCheckin string  `json:"driver_checkin" form:"driver_checkin" binding:"required"`
	OpsNotes      *string `json:"ops_notes,omitempty" form:"ops_notes"`
}

type MissResponse struct {
	MissULID           string    `json:"miss_ulid"`
	Date               string    `json:"date"`
	SubmittedBy        string    `json:"submitted_by"`
	TimeCalledIn       string    `json:"time_called_in"`
	Zone               string    `json:"zone"`
	ZoneColor          *string   `json:"zone_color,omitempty"`
	TimeSentToOps      time.Time `json:"time_sent_to_ops"`
	Address            string    `json:"address"`
	ServiceType        string    `json:"service_type"`
	Route              string    `json:"route"`
	WholeBlock         bool      `json:"whole_block"`
	PlacementException bool      `json:"placement_exception"`
	PEAddress          *string   `json:"pe_address,omitempty"`
	CityNotes          *string   `json:"city_notes,omitempty"`
	TimeDispatched     *string   `json:"time_dispatched,omitempty"`
	DriverCheckin      *string   `json:"driver_checkin,omitempty"`
	Status             string    `json:"status"`
	OpsNotes           *string   `json:"ops_notes,omitempty"`
	ImageRef           *string   `json:"image_ref,omitempty"`
	TimesMissed        int       `json:"times_missed"`
	LastMissed         string    `json:"last_missed"`
	WeekEnding         string    `json:"week_ending,omitempty"`
	DayTab             string    `json:"day_tab,omitempty"`
}

// 一覧の絞り込み
type ListQuery struct {
	// scope: "master"（既定）または "day"
	Scope      string
	WeekEnding string
	DayTab     string
	// 状態クラス: "open"（未ディスパッチ）/ "to_complete"（完了待ち）
	Class       string
	Address     string
	ServiceType string
	Status      string
}

func buildMissResponse(m *Miss, weekEnding, dayTab string) MissResponse {
	resp := MissResponse{
		MissULID:           m.MissULID,
		Date:               m.Date,
		SubmittedBy:        m.SubmittedBy,
		TimeCalledIn:       m.TimeCalledIn,
		Zone:               m.Zone,
		TimeSentToOps:      m.TimeSentToOps,
		Address:            m.Address,
		ServiceType:        m.ServiceType,
		Route:              m.Route,
		WholeBlock:         m.WholeBlock,
		PlacementException: m.PlacementException,
		Status:             string(m.Status),
		TimesMissed:        m.TimesMissed,
		LastMissed:         m.LastMissed,
		WeekEnding:         weekEnding,
		DayTab:             dayTab,
	}

	if m.ZoneColor.Valid {
		val := m.ZoneColor.String
		resp.ZoneColor = &val
	}
	if m.PEAddress.Valid {
		val := m.PEAddress.String
		resp.PEAddress = &val
	}
	if m.CityNotes.Valid {
		val := m.CityNotes.String
		resp.CityNotes = &val
	}
	if m.TimeDispatched.Valid {
		val := m.TimeDispatched.String
		resp.TimeDispatched = &val
	}
	if m.DriverCheckin.Valid {
		val := m.DriverCheckin.String
		resp.DriverCheckin = &val
	}
	if m.OpsNotes.Valid {
		val := m.OpsNotes.String
		resp.OpsNotes = &val
	}
	if m.ImageRef.Valid {
		val := m.ImageRef.String
		resp.ImageRef = &val
	}
	return resp
}
