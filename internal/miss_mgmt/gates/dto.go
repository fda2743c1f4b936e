package gates

import "time"

const DateLayout = "2006-01-02"

type MarkCompleteRequest struct {
	// "YYYY-MM-DD" または "today"
	GateDate    string `json:"gate_date" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"`
}

type ClearDayRequest struct {
	GateDate string `json:"gate_date" binding:"required"`
}

type GateResponse struct {
	GateDate    string     `json:"gate_date"`
	ServiceType string     `json:"service_type"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CompletedBy *string    `json:"completed_by,omitempty"`
}
