package analytics

import "time"

// PageView is the durable per-path view counter.
type PageView struct {
	Path      string    `gorm:"primaryKey;size:512" json:"path"`
	Count     int64     `gorm:"not null;default:0" json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name independent of gorm's pluralization rules.
func (PageView) TableName() string { return "page_views" }

// ViewEvent is the payload published to the analytics topic for every
// recorded view.
type ViewEvent struct {
	Path       string    `json:"path"`
	Framework  string    `json:"framework,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
