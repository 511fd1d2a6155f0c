package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction Model
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`                  // Primary key
	UserID          uint            `gorm:"index;not null"`              // Foreign key to the owning User
	CategoryID      *uint           `gorm:"index"`                       // Optional foreign key to Category
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"` // Positive amount
	Type            string          `gorm:"size:16;index;not null"`      // Transaction type: income or expense
	Description     *string         `gorm:"size:255"`                    // Optional free-text description
	TransactionDate time.Time       `gorm:"type:date;index;not null"`    // Calendar date, no time component
	CreatedAt       time.Time       // Timestamp of creation
	UpdatedAt       time.Time       // Timestamp of last update
}
