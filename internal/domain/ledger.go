package domain

// PointsLedger Model
type PointsLedger struct {
	ID             uint  `gorm:"primaryKey"`         // Primary key
	UserID         uint  `gorm:"uniqueIndex"`        // Foreign key to User
	Balance        int64 `gorm:"not null;default:0"` // Spendable point balance, never negative
	LifetimeEarned int64 `gorm:"not null;default:0"` // Total points ever earned, only grows
}

// LedgerEntry Model. Entries are append-only: rows are never updated or deleted.
type LedgerEntry struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	LedgerID  uint   `gorm:"index;not null"`       // Foreign key to PointsLedger
	Delta     int64  `gorm:"not null"`             // Signed point change (positive: award, negative: spend)
	Reason    string `gorm:"index;not null"`       // Machine reason: workout, challenge, story_create, chapter, admin_grant, admin_revoke
	Ref       string `gorm:"size:36"`              // External reference string (UUID)
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
