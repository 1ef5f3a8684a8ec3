package domain

import "time"

// Account is an authenticated customer. ID is the subject of the bearer token.
type Account struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	Email      string     `json:"email" gorm:"uniqueIndex;size:120;not null"`
	Phone      *string    `json:"phone" gorm:"size:20"`
	IsVerified bool       `json:"is_verified" gorm:"not null;default:false"`
	VerifiedAt *time.Time `json:"verified_at"`
	CreatedAt  time.Time  `json:"created_at"`
	Orders     []Order    `json:"-" gorm:"foreignKey:AccountID"`
}
