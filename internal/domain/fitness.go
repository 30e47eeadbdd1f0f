package domain

// FitnessToken Model: OAuth tokens for a connected fitness provider.
// Token columns hold AES-256-GCM ciphertext, never plaintext.
type FitnessToken struct {
	ID           uint   `gorm:"primaryKey"`                        // Primary key
	UserID       uint   `gorm:"uniqueIndex:idx_token_user_prov"`   // Foreign key to User
	Provider     string `gorm:"uniqueIndex:idx_token_user_prov"`   // Provider: strava or fitbit
	AccessToken  string `gorm:"not null;size:1024" json:"-"`       // Encrypted access token
	RefreshToken string `gorm:"size:1024" json:"-"`                // Encrypted refresh token, may be empty
	ExpiresAt    int64  // Access token expiry as unix seconds, zero if unknown
	LastSyncAt   int64  // Unix seconds of the last successful sync, zero if never synced
	CreatedAt    int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}
