package domain

import "time"

// SpriteRecord は永続化されるスプライトのレコードです。
// 1レコードはちょうど1人のオーナーに属します。
type SpriteRecord struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	OwnerID  string `gorm:"index;size:64;not null" json:"owner_id"`
	Prompt   string `gorm:"not null" json:"prompt"`
	ImageRef string `gorm:"not null" json:"image_ref"` // data URL またはオブジェクトストアURL
	Size     int    `json:"size"`
	Style    string `json:"style"` // StyleOptions の JSON 表現

	CreatedAt time.Time `json:"created_at"`
}

// EnhancedRecord はスプライトに 1:1 で紐づくエンハンス結果のレコードです。
// SpriteID の一意制約が 1:1 不変条件をデータベース側でも保証します。
type EnhancedRecord struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	SpriteID  string `gorm:"uniqueIndex;size:36;not null" json:"sprite_id"`
	ImageRef  string `gorm:"not null" json:"image_ref"`
	Prompt    string `json:"prompt"`
	Style     string `json:"style"`
	LatencyMS int64  `json:"latency_ms"`

	CreatedAt time.Time `json:"created_at"`
}
