package billing

import "errors"

var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrPlanIDExists       = errors.New("plan ID already exists")
	ErrProfileNotFound    = errors.New("billing profile not found")
	ErrRecordNotFound     = errors.New("subscription record not found")
	ErrUsageLimitExceeded = errors.New("usage limit exceeded")
)
