package media

import "time"

const (
	TypeImage = "image"
	TypeVideo = "video"
)

// Record is write-once upload metadata. URL points at the stored binary.
type Record struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	UserID     uint64    `gorm:"index;not null" json:"user_id"`
	MediaType  string    `gorm:"type:text;not null" json:"media_type"`
	Month      int       `gorm:"not null" json:"month"`
	Week       *int      `json:"week"`
	EmotionTag string    `gorm:"type:text;not null" json:"emotion_tag"`
	URL        string    `gorm:"type:text;not null;index" json:"url"`
	Notes      *string   `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (Record) TableName() string { return "media" }
