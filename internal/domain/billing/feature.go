package billing

import (
	"fmt"
	"time"
)

// PlanFeature is an ordered display bullet attached to a plan. Features are
// presentation only; entitlement comes from the plan's included quota.
type PlanFeature struct {
	id        uint
	planRowID uint
	text      string
	included  bool
	sortOrder int
	createdAt time.Time
}

// NewPlanFeature creates a display bullet for a plan.
func NewPlanFeature(text string, included bool, sortOrder int) (*PlanFeature, error) {
	if text == "" {
		return nil, fmt.Errorf("feature text is required")
	}
	if len(text) > 200 {
		return nil, fmt.Errorf("feature text too long (max 200 characters)")
	}
	return &PlanFeature{
		text:      text,
		included:  included,
		sortOrder: sortOrder,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructPlanFeature reconstructs a feature from persistence.
func ReconstructPlanFeature(id, planRowID uint, text string, included bool, sortOrder int, createdAt time.Time) (*PlanFeature, error) {
	if id == 0 {
		return nil, fmt.Errorf("feature ID cannot be zero")
	}
	if text == "" {
		return nil, fmt.Errorf("feature text is required")
	}
	return &PlanFeature{
		id:        id,
		planRowID: planRowID,
		text:      text,
		included:  included,
		sortOrder: sortOrder,
		createdAt: createdAt,
	}, nil
}

func (f *PlanFeature) ID() uint {
	return f.id
}
func (f *PlanFeature) PlanRowID() uint {
	return f.planRowID
}
func (f *PlanFeature) Text() string {
	return f.text
}
func (f *PlanFeature) Included() bool {
	return f.included
}
func (f *PlanFeature) SortOrder() int {
	return f.sortOrder
}
func (f *PlanFeature) CreatedAt() time.Time {
	return f.createdAt
}
