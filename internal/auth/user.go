package auth

import "time"

// User is the account record. DueDate is the user's own estimate; the baby
// profile may carry another one.
type User struct {
	ID           uint64     `gorm:"primaryKey"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	FullName     string     `gorm:"type:text;not null;default:''"`
	Country      string     `gorm:"type:text;not null;default:''"`
	DueDate      *time.Time `gorm:"type:date"`
	CreatedAt    time.Time  `gorm:"not null"`
}
