package model

import (
	"time"

	"github.com/google/uuid"
)

// CacheEntry is the metadata row for one stored cache archive. The payload
// itself lives in the blob store under the same key.
type CacheEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Key       string     `gorm:"type:varchar(512);uniqueIndex;not null" json:"key"`
	Size      int64      `gorm:"not null" json:"size"`
	Checksum  string     `gorm:"type:varchar(64);not null" json:"checksum"`
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (CacheEntry) TableName() string { return "cache_entries" }
