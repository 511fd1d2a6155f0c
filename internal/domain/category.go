package domain

import "time"

// Category and transaction types
const (
	TypeIncome  = "income"  // Income category/transaction
	TypeExpense = "expense" // Expense category/transaction
)

// DefaultColor is used when a category is created without a color
const DefaultColor = "#000000"

// Category Model
type Category struct {
	ID        uint    `gorm:"primaryKey"`                                        // Primary key
	UserID    uint    `gorm:"not null;uniqueIndex:idx_categories_user_name_type"` // Foreign key to the owning User
	Name      string  `gorm:"size:100;not null;uniqueIndex:idx_categories_user_name_type"` // Category name
	Type      string  `gorm:"size:16;not null;uniqueIndex:idx_categories_user_name_type"`  // income or expense
	Color     string  `gorm:"size:7;not null;default:'#000000'"`                 // Display color (hex)
	Icon      *string `gorm:"size:50"`                                           // Optional icon name
	CreatedAt time.Time
	UpdatedAt time.Time
}
