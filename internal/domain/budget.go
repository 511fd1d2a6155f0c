package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget periods
const (
	PeriodMonthly = "monthly" // Monthly budget cadence
	PeriodYearly  = "yearly"  // Yearly budget cadence
)

// Budget Model
//
// Derived figures (spent, remaining, percentage used) are never stored;
// they are computed from transactions at read time.
type Budget struct {
	ID         uint            `gorm:"primaryKey"`                        // Primary key
	UserID     uint            `gorm:"index:idx_budgets_user_category;not null"` // Foreign key to the owning User
	CategoryID uint            `gorm:"index:idx_budgets_user_category;not null"` // Foreign key to an expense Category
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`       // Budgeted amount
	Period     string          `gorm:"size:16;not null"`                  // monthly or yearly (advisory)
	StartDate  time.Time       `gorm:"type:date;not null"`                // First day covered, inclusive
	EndDate    time.Time       `gorm:"type:date;not null"`                // Last day covered, inclusive
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
