package models

import (
	"time"

	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
)

// SubscriptionRecordModel represents the database persistence model for
// provider subscription mirrors.
type SubscriptionRecordModel struct {
	ID                 uint   `gorm:"primarykey"`
	UserID             uint   `gorm:"not null;index"`
	PlanID             string `gorm:"not null;size:50"`
	ProviderSubRef     string `gorm:"uniqueIndex;not null;size:100"`
	ProviderPriceRef   string `gorm:"size:100"`
	Status             string `gorm:"not null;size:20"`
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	Version            int `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionRecordModel) TableName() string {
	return constants.TableSubscriptionRecords
}
