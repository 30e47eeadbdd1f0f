package domain

// Profile Model
type Profile struct {
	ID        uint   `gorm:"primaryKey"`  // Primary key
	UserID    uint   `gorm:"uniqueIndex"` // Foreign key to User
	Bio       string `gorm:"size:500"`    // Short free-text bio
	AvatarURL string // Avatar image URL
	Timezone  string `gorm:"default:UTC"` // IANA timezone name
}
