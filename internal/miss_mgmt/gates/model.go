package gates

import (
	"time"

	"MSM-backend/internal/miss_mgmt/lifecycle"
)

// DB行に対応（スキャン用）
type gateRow struct {
	GateID      uint64
	GateDate    string // DATE → "YYYY-MM-DD"
	ServiceType string
	Status      string
	CompletedAt *time.Time
	CompletedBy *string
}

// Service ↔ Store で使うモデル
type Gate struct {
	GateID      uint64
	GateDate    string
	ServiceType string
	Status      lifecycle.GateStatus
	CompletedAt *time.Time
	CompletedBy *string
}

func (r gateRow) toModel() Gate {
	g := Gate{
		GateID:      r.GateID,
		GateDate:    r.GateDate,
		ServiceType: r.ServiceType,
		Status:      lifecycle.GateStatus(r.Status),
		CompletedBy: r.CompletedBy,
	}
	if r.CompletedAt != nil {
		t := r.CompletedAt.UTC()
		g.CompletedAt = &t
	}
	return g
}

func (g Gate) toDTO() GateResponse {
	return GateResponse{
		GateDate:    g.GateDate,
		ServiceType: g.ServiceType,
		Status:      string(g.Status),
		CompletedAt: g.CompletedAt,
		CompletedBy: g.CompletedBy,
	}
}
