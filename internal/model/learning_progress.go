package model

import "time"

type LearningProgress struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint      `gorm:"uniqueIndex:idx_progress_item;not null" json:"user_id"`
	LearningPathID uint      `gorm:"uniqueIndex:idx_progress_item;not null" json:"learning_path_id"`
	ContentID      string    `gorm:"uniqueIndex:idx_progress_item;size:191;not null" json:"content_id"`
	ContentType    string    `gorm:"size:50" json:"content_type"`
	Mastered       bool      `gorm:"default:false" json:"mastered"`
	NeedsReview    bool      `gorm:"default:false" json:"needs_review"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (LearningProgress) TableName() string {
	return "learning_progress"
}
