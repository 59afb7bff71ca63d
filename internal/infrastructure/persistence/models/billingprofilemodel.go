package models

import (
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
)

// BillingProfileModel represents the database persistence model for per-user
// billing state.
type BillingProfileModel struct {
	ID                  uint   `gorm:"primarykey"`
	UserID              uint   `gorm:"uniqueIndex;not null"`
	PlanID              string `gorm:"not null;size:50;index"`
	Status              string `gorm:"not null;size:20;default:active"`
	ProviderCustomerRef string `gorm:"size:100;index"`
	CurrentPeriodEnd    *time.Time
	Version             int `gorm:"not null;default:1"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName specifies the table name for GORM
func (BillingProfileModel) TableName() string {
	return constants.TableBillingProfiles
}
