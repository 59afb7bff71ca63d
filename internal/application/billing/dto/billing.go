package dto

import (
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
)

type BillingProfileDTO struct {
	UserID              uint       `json:"user_id"`
	PlanID              string     `json:"plan_id"`
	Status              string     `json:"status"`
	ProviderCustomerRef string     `json:"provider_customer_ref,omitempty"`
	CurrentPeriodEnd    *time.Time `json:"current_period_end,omitempty"`
}

func ProfileToDTO(p *billing.UserBillingProfile) *BillingProfileDTO {
	if p == nil {
		return nil
	}
	return &BillingProfileDTO{
		UserID:              p.UserID(),
		PlanID:              p.PlanID(),
		Status:              string(p.Status()),
		ProviderCustomerRef: p.ProviderCustomerRef(),
		CurrentPeriodEnd:    p.CurrentPeriodEnd(),
	}
}

// UsageDTO reports how much of the current usage period's quota a user has
// consumed.
type UsageDTO struct {
	PlanID         string    `json:"plan_id"`
	Status         string    `json:"status"`
	IncludedQuota  int       `json:"included_quota"`
	Used           int64     `json:"used"`
	Remaining      int64     `json:"remaining"`
	PercentageUsed float64   `json:"percentage_used"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	Allowed        bool      `json:"allowed"`
	Reason         string    `json:"reason,omitempty"`
}

// SessionDTO carries a provider-hosted session for browser redirect.
// SessionID is empty for portal sessions, which have no local follow-up.
type SessionDTO struct {
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url"`
}

// PlanSyncOutcome is the per-plan result of a catalog synchronization run.
type PlanSyncOutcome string

const (
	SyncOutcomeSynced  PlanSyncOutcome = "synced"
	SyncOutcomeSkipped PlanSyncOutcome = "skipped"
	SyncOutcomeError   PlanSyncOutcome = "error"
)

type PlanSyncResult struct {
	PlanID  string          `json:"plan_id"`
	Outcome PlanSyncOutcome `json:"outcome"`
	Detail  string          `json:"detail,omitempty"`
}

// SyncReport summarizes a catalog synchronization run. One plan failing
// never aborts the run; its result carries the error detail instead.
type SyncReport struct {
	Results []PlanSyncResult `json:"results"`
	Synced  int              `json:"synced"`
	Skipped int              `json:"skipped"`
	Errors  int              `json:"errors"`
}

func (r *SyncReport) Add(planID string, outcome PlanSyncOutcome, detail string) {
	r.Results = append(r.Results, PlanSyncResult{PlanID: planID, Outcome: outcome, Detail: detail})
	switch outcome {
	case SyncOutcomeSynced:
		r.Synced++
	case SyncOutcomeSkipped:
		r.Skipped++
	case SyncOutcomeError:
		r.Errors++
	}
}
