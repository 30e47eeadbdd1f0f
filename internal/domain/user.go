package domain

// User Model
type User struct {
	ID          uint         `gorm:"primaryKey"`                                     // Primary key
	Username    string       `gorm:"unique;not null"`                                // Unique username, stored lowercase
	Email       string       `gorm:"unique;not null"`                                // Unique email, stored lowercase
	Password    string       `gorm:"not null" json:"-"`                              // Hashed password, never serialized
	Role        string       `gorm:"default:user"`                                   // Role: user or admin
	DisplayName string       // Optional display name shown on stories
	Profile     Profile      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`  // One-to-one relationship with Profile
	Ledger      PointsLedger `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"` // One-to-one relationship with PointsLedger
}
