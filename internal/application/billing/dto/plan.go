package dto

import (
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/domain/billing"
)

type PlanFeatureDTO struct {
	Text      string `json:"text"`
	Included  bool   `json:"included"`
	SortOrder int    `json:"sort_order"`
}

type PlanDTO struct {
	ID                 uint             `json:"id"`
	PlanID             string           `json:"plan_id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	PriceMinorUnits    int64            `json:"price_minor_units"`
	Currency           string           `json:"currency"`
	IncludedQuota      int              `json:"included_quota"`
	IsActive           bool             `json:"is_active"`
	IsVisible          bool             `json:"is_visible"`
	IsHighlighted      bool             `json:"is_highlighted"`
	SortOrder          int              `json:"sort_order"`
	CTAText            string           `json:"cta_text"`
	CTABehavior        string           `json:"cta_behavior"`
	ProviderProductRef string           `json:"provider_product_ref,omitempty"`
	ProviderPriceRef   string           `json:"provider_price_ref,omitempty"`
	Features           []PlanFeatureDTO `json:"features"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// PublicPlanDTO is the pricing-surface projection. Provider references and
// lifecycle flags stay internal.
type PublicPlanDTO struct {
	PlanID          string           `json:"plan_id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	PriceMinorUnits int64            `json:"price_minor_units"`
	Currency        string           `json:"currency"`
	IncludedQuota   int              `json:"included_quota"`
	IsHighlighted   bool             `json:"is_highlighted"`
	SortOrder       int              `json:"sort_order"`
	CTAText         string           `json:"cta_text"`
	CTABehavior     string           `json:"cta_behavior"`
	Features        []PlanFeatureDTO `json:"features"`
}

func PlanToDTO(p *billing.Plan) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:                 p.ID(),
		PlanID:             p.PlanID(),
		Name:               p.Name(),
		Description:        p.Description(),
		PriceMinorUnits:    p.PriceMinorUnits(),
		Currency:           p.Currency(),
		IncludedQuota:      p.IncludedQuota(),
		IsActive:           p.IsActive(),
		IsVisible:          p.IsVisible(),
		IsHighlighted:      p.IsHighlighted(),
		SortOrder:          p.SortOrder(),
		CTAText:            p.CTAText(),
		CTABehavior:        string(p.CTABehavior()),
		ProviderProductRef: p.ProviderProductRef(),
		ProviderPriceRef:   p.ProviderPriceRef(),
		Features:           featuresToDTO(p.Features()),
		CreatedAt:          p.CreatedAt(),
		UpdatedAt:          p.UpdatedAt(),
	}
}

func PlanToPublicDTO(p *billing.Plan) *PublicPlanDTO {
	if p == nil {
		return nil
	}
	return &PublicPlanDTO{
		PlanID:          p.PlanID(),
		Name:            p.Name(),
		Description:     p.Description(),
		PriceMinorUnits: p.PriceMinorUnits(),
		Currency:        p.Currency(),
		IncludedQuota:   p.IncludedQuota(),
		IsHighlighted:   p.IsHighlighted(),
		SortOrder:       p.SortOrder(),
		CTAText:         p.CTAText(),
		CTABehavior:     string(p.CTABehavior()),
		Features:        featuresToDTO(p.Features()),
	}
}

func featuresToDTO(features []billing.PlanFeature) []PlanFeatureDTO {
	out := make([]PlanFeatureDTO, 0, len(features))
	for _, f := range features {
		out = append(out, PlanFeatureDTO{
			Text:      f.Text(),
			Included:  f.Included(),
			SortOrder: f.SortOrder(),
		})
	}
	return out
}

// FeatureInput is the inbound shape for plan feature bullets.
type FeatureInput struct {
	Text      string `json:"text"`
	Included  bool   `json:"included"`
	SortOrder int    `json:"sort_order"`
}
