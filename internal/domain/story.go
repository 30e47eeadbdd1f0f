package domain

// Story statuses
const (
	StoryOpen   = "open"   // Accepting chapters
	StoryClosed = "closed" // Closed by the creator, chapters rejected
)

// Story Model
type Story struct {
	ID        uint   `gorm:"primaryKey"`            // Primary key
	Title     string `gorm:"not null"`              // Story title
	Premise   string `gorm:"size:2000"`             // Opening premise shown to contributors
	CreatorID uint   `gorm:"index;not null"`        // Foreign key to the creating User
	Status    string `gorm:"not null;default:open"` // Status: open or closed
	CreatedAt int64  `gorm:"autoCreateTime:milli"`  // Timestamp of creation in milliseconds
}

// Chapter Model: chapters are append-only whole-unit submissions,
// ordered by a per-story sequence number.
type Chapter struct {
	ID        uint    `gorm:"primaryKey"`                       // Primary key
	StoryID   uint    `gorm:"uniqueIndex:idx_chapter_story_no"` // Foreign key to Story
	AuthorID  uint    `gorm:"index;not null"`                   // Foreign key to the authoring User
	Number    int     `gorm:"uniqueIndex:idx_chapter_story_no"` // Sequence number within the story, starting at 1
	Body      string  `gorm:"type:text;not null"`               // Chapter text
	VoteScore float64 `gorm:"not null;default:0"`               // Sum of weighted votes, maintained with each vote
	CreatedAt int64   `gorm:"autoCreateTime:milli"`             // Timestamp of creation in milliseconds
}

// ChapterVote Model: one vote per user per chapter.
type ChapterVote struct {
	ID        uint    `gorm:"primaryKey"`                      // Primary key
	ChapterID uint    `gorm:"uniqueIndex:idx_vote_ch_voter"`   // Foreign key to Chapter
	VoterID   uint    `gorm:"uniqueIndex:idx_vote_ch_voter"`   // Foreign key to the voting User
	Weight    float64 `gorm:"not null"`                        // Signed effective weight: value x voter weight
	CreatedAt int64   `gorm:"autoCreateTime:milli"`            // Timestamp of creation in milliseconds
}
