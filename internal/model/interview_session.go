package model

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

const (
	TurnSystem    = "system"
	TurnUser      = "user"
	TurnAssistant = "assistant"
)

type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type DimensionScores struct {
	TechnicalDepth int `json:"technical_depth"`
	Expression     int `json:"expression"`
	ProblemSolving int `json:"problem_solving"`
	Experience     int `json:"experience"`
}

// Evaluation 面试结束时生成，只写一次
type Evaluation struct {
	OverallScore    int             `json:"overall_score"`
	DimensionScores DimensionScores `json:"dimension_scores"`
	Strengths       []string        `json:"strengths"`
	Weaknesses      []string        `json:"weaknesses"`
	Suggestions     []string        `json:"suggestions"`
	Summary         string          `json:"summary"`
}

func DefaultEvaluation() *Evaluation {
	return &Evaluation{
		OverallScore: 70,
		DimensionScores: DimensionScores{
			TechnicalDepth: 70,
			Expression:     70,
			ProblemSolving: 70,
			Experience:     70,
		},
		Strengths:   []string{"表达清晰"},
		Weaknesses:  []string{"需要更多实践"},
		Suggestions: []string{"继续学习，多做项目"},
		Summary:     "面试表现良好，继续努力。",
	}
}

// swagger:model InterviewSession
type InterviewSession struct {
	ID              uint                      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID          uint                      `gorm:"index;not null" json:"user_id"`
	LearningPathID  *uint                     `gorm:"index" json:"learning_path_id"`
	Position        string                    `gorm:"size:200" json:"position"`
	Status          SessionStatus             `gorm:"size:20;default:'in_progress'" json:"status"`
	Conversation    datatypes.JSONSlice[Turn] `json:"conversation"`
	Evaluation      *Evaluation               `gorm:"type:json;serializer:json" json:"evaluation"`
	StartedAt       time.Time                 `json:"started_at"`
	EndedAt         *time.Time                `json:"ended_at"`
	DurationSeconds int                       `json:"duration_seconds"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// UserTurns 候选人已回答的轮数
func (s *InterviewSession) UserTurns() int {
	n := 0
	for _, t := range s.Conversation {
		if t.Role == TurnUser {
			n++
		}
	}
	return n
}
