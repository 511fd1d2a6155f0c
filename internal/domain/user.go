package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey"`                    // Primary key
	Email     string    `gorm:"size:255;uniqueIndex;not null"` // Unique email, stored lowercase
	Password  string    `gorm:"size:255;not null"`             // Hashed password
	FullName  string    `gorm:"size:255;not null"`             // Display name
	CreatedAt time.Time // Timestamp of creation
	UpdatedAt time.Time // Timestamp of last update
}
