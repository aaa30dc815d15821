package model

import "time"

type QuestionState string

const (
	StatusNotSeen     QuestionState = "not_seen"
	StatusMastered    QuestionState = "mastered"
	StatusNotMastered QuestionState = "not_mastered"
)

func (s QuestionState) Valid() bool {
	return s == StatusNotSeen || s == StatusMastered || s == StatusNotMastered
}

// QuestionStatus 每个 (用户, 题目) 唯一一条，首次更新时创建
type QuestionStatus struct {
	ID             uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint          `gorm:"uniqueIndex:idx_user_question;not null" json:"user_id"`
	QuestionID     uint          `gorm:"uniqueIndex:idx_user_question;not null" json:"question_id"`
	Status         QuestionState `gorm:"size:20;default:'not_seen'" json:"status"`
	ReviewCount    int           `gorm:"default:0" json:"review_count"`
	LastReviewedAt *time.Time    `json:"last_reviewed_at"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (QuestionStatus) TableName() string {
	return "question_status"
}

// QuestionWithStatus 题目及当前用户的掌握状态，未标记过的题目为 not_seen
type QuestionWithStatus struct {
	InterviewQuestion
	Status         QuestionState `json:"status"`
	ReviewCount    int           `json:"review_count"`
	LastReviewedAt *time.Time    `json:"last_reviewed_at"`
	Position       string        `json:"position,omitempty"`
}
