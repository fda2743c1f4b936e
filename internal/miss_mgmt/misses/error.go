package misses

import (
	"errors"
	"fmt"
)

// ===== Error model =====

type Code string

const (
	CodeInvalidArgument       Code = "INVALID_ARGUMENT"
	CodeNotFound              Code = "NOT_FOUND"
	CodeConflict              Code = "CONFLICT"
	CodeDuplicateActive       Code = "DUPLICATE_ACTIVE_RECORD"
	CodePeriodNotProvisioned  Code = "PERIOD_NOT_PROVISIONED"
	CodeReconciliationDiverge Code = "RECONCILIATION_DIVERGED"
	CodeRateLimited           Code = "RATE_LIMITED"
	CodeStoreUnavailable      Code = "STORE_UNAVAILABLE"
	CodeInternal              Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func ErrDuplicateActive(address string) *APIError {
	return &APIError{
		Code:    CodeDuplicateActive,
		Message: fmt.Sprintf("an unresolved report already exists for %s", address),
	}
}

func ErrPeriodNotProvisioned(weekEnding, dayTab string) *APIError {
	return &APIError{
		Code:    CodePeriodNotProvisioned,
		Message: fmt.Sprintf("weekly log for week ending %s (%s) has not been provisioned; contact an admin", weekEnding, dayTab),
	}
}

func ErrReconcileDiverged(ulid, detail string) *APIError {
	return &APIError{
		Code:    CodeReconciliationDiverge,
		Message: fmt.Sprintf("master log updated but weekly log update failed for %s: %s", ulid, detail),
	}
}

func ErrRateLimited(msg string) *APIError {
	return &APIError{Code: CodeRateLimited, Message: msg}
}

func ErrStoreUnavailable(msg string) *APIError {
	return &APIError{Code: CodeStoreUnavailable, Message: msg}
}

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict, CodeDuplicateActive:
			return 409
		case CodePeriodNotProvisioned:
			return 422
		case CodeRateLimited:
			return 429
		case CodeStoreUnavailable:
			return 503
		default:
			return 500
		}
	}
	return 500
}

func codeOf(err error) Code {
	var api *APIError
	if errors.As(err, &api) {
		return api.Code
	}
	return CodeInternal
}
