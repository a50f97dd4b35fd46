package models

import "time"

// DiaryEntry is one owner's record for one calendar date.
type DiaryEntry struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"userId"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	Mood      string    `json:"mood"`
	Weather   string    `json:"weather"`
	Images    []string  `json:"images"`
	Videos    []string  `json:"videos"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stats aggregates an owner's diary.
type Stats struct {
	TotalDays      int   `json:"totalDays"`
	TotalWords     int64 `json:"totalWords"`
	ContinuousDays int   `json:"continuousDays"`
}

// MediaRefs are the media URLs a deleted entry pointed at.
type MediaRefs struct {
	Images []string
	Videos []string
}

// All returns images followed by videos.
func (m MediaRefs) All() []string {
	out := make([]string, 0, len(m.Images)+len(m.Videos))
	out = append(out, m.Images...)
	return append(out, m.Videos...)
}
