package gates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"MSM-backend/internal/miss_mgmt/lifecycle"
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

type GateStore interface {
	Get(ctx context.Context, gateDate, serviceType string) (*Gate, error)
	ListForDate(ctx context.Context, gateDate string) ([]Gate, error)
	MarkComplete(ctx context.Context, gateDate, serviceType, actor string) (Gate, error)
	ClearDay(ctx context.Context, gateDate string, serviceTypes []string) error
}

// ゲートを持つサービス種別（misses 側の定義と同値だが、循環importを避けて持つ）
var gateServiceTypes = []string{"MSW", "SS", "YW"}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type Service struct {
	store GateStore
	loc   *time.Location
	clock Clock
}

func NewService(conn *sql.DB, loc *time.Location) *Service {
	return &Service{store: NewStore(conn), loc: loc, clock: realClock{}}
}

func NewServiceWithStore(store GateStore, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, clock: realClock{}}
}

func validServiceType(s string) bool {
	for _, t := range gateServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

func (s *Service) resolveDate(d string) (string, error) {
	if d == "today" || d == "" {
		return s.clock.Now().In(s.loc).Format(DateLayout), nil
	}
	if _, err := time.Parse(DateLayout, d); err != nil {
		return "", errInvalid("date must be YYYY-MM-DD or 'today'")
	}
	return d, nil
}

// GateFor は misses.GateChecker の実装。
// エントリが無い日は (ゲート無し) として返し、提出側は Pending 扱いにする。
func (s *Service) GateFor(ctx context.Context, date, serviceType string) (lifecycle.GateStatus, bool, error) {
	g, err := s.store.Get(ctx, date, serviceType)
	if err != nil {
		return "", false, err
	}
	if g == nil {
		return "", false, nil
	}
	return g.Status, true, nil
}

// GET /gates
func (s *Service) ListForDate(ctx context.Context, date string) ([]GateResponse, error) {
	d, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListForDate(ctx, d)
	if err != nil {
		return nil, err
	}
	out := make([]GateResponse, 0, len(rows))
	for _, g := range rows {
		out = append(out, g.toDTO())
	}
	return out, nil
}

// POST /gates/complete
// 便の完了報告。既に作成済みのレコードには遡及しない（提出時の判定にのみ効く）。
func (s *Service) MarkComplete(ctx context.Context, req MarkCompleteRequest, actor string) (GateResponse, error) {
	if !validServiceType(req.ServiceType) {
		return GateResponse{}, errInvalid("service_type must be one of MSW, SS, YW")
	}
	d, err := s.resolveDate(req.GateDate)
	if err != nil {
		return GateResponse{}, err
	}

	g, err := s.store.MarkComplete(ctx, d, req.ServiceType, actor)
	if err != nil {
		return GateResponse{}, err
	}
	return g.toDTO(), nil
}

// POST /gates/clear（管理者のみ、日次リセット）
func (s *Service) ClearDay(ctx context.Context, req ClearDayRequest) ([]GateResponse, error) {
	d, err := s.resolveDate(req.GateDate)
	if err != nil {
		return nil, err
	}
	if err := s.store.ClearDay(ctx, d, gateServiceTypes); err != nil {
		return nil, err
	}
	return s.ListForDate(ctx, d)
}
