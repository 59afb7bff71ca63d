package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
)

// PlanModel represents the database persistence model for billing plans.
// This is the anti-corruption layer between domain and database.
type PlanModel struct {
	ID                 uint   `gorm:"primarykey"`
	PlanID             string `gorm:"uniqueIndex;not null;size:50"`
	Name               string `gorm:"not null;size:100"`
	Description        string `gorm:"size:500"`
	PriceMinorUnits    int64  `gorm:"not null;default:0"`
	Currency           string `gorm:"not null;size:3;default:usd"`
	IncludedQuota      int    `gorm:"not null;default:0"`
	// Pointers: GORM omits zero-valued plain bools on insert, which would
	// let the default:true column overwrite an explicit false.
	IsActive           *bool  `gorm:"not null;default:true;index"`
	IsVisible          *bool  `gorm:"not null;default:true"`
	IsHighlighted      bool   `gorm:"not null;default:false"`
	SortOrder          int    `gorm:"default:0"`
	CTAText            string `gorm:"column:cta_text;size:100"`
	CTABehavior        string `gorm:"column:cta_behavior;size:20"`
	ProviderProductRef string `gorm:"size:100;index"`
	ProviderPriceRef   string `gorm:"size:100"`
	Features           datatypes.JSON
	Version            int `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

// FeatureJSON is the shape stored in the Features JSON column.
type FeatureJSON struct {
	Text      string `json:"text"`
	Included  bool   `json:"included"`
	SortOrder int    `json:"sort_order"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return constants.TablePlans
}

// BeforeCreate hook for GORM
func (p *PlanModel) BeforeCreate(tx *gorm.DB) error {
	if p.Currency == "" {
		p.Currency = constants.DefaultCurrency
	}
	return nil
}
