package model

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// NormalizeDifficulty 非法值统一为 medium
func NormalizeDifficulty(s string) Difficulty {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	}
	return DifficultyMedium
}

// swagger:model InterviewQuestion
type InterviewQuestion struct {
	ID              uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	LearningPathID  uint                        `gorm:"index;not null" json:"learning_path_id"`
	Question        string                      `gorm:"type:text;not null" json:"question"`
	Answer          string                      `gorm:"type:text" json:"answer"`
	Category        string                      `gorm:"size:100" json:"category"`
	Difficulty      Difficulty                  `gorm:"size:20;default:'medium'" json:"difficulty"`
	KnowledgePoints datatypes.JSONSlice[string] `json:"knowledge_points"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}
