package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/constants"
)

// ArticleModel is the billing-side view of generated articles. Only the
// columns the usage counter needs carry constraints; authoring owns the
// rest of the row.
type ArticleModel struct {
	ID        uint   `gorm:"primarykey"`
	SID       string `gorm:"column:sid;uniqueIndex;not null;size:32"`
	UserID    uint   `gorm:"not null;index:idx_articles_user_created"`
	Title     string `gorm:"size:300"`
	Metadata  datatypes.JSON
	CreatedAt time.Time `gorm:"index:idx_articles_user_created"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GORM
func (ArticleModel) TableName() string {
	return constants.TableArticles
}
