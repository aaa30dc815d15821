package repository

import (
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type InterviewSessionRepository struct {
	DB *gorm.DB
}

func NewInterviewSessionRepository(db *gorm.DB) *InterviewSessionRepository {
	return &InterviewSessionRepository{DB: db}
}

func (r *InterviewSessionRepository) Create(s *model.InterviewSession) error {
	return r.DB.Create(s).Error
}

func (r *InterviewSessionRepository) FindByIDForUser(id, userID uint) (*model.InterviewSession, error) {
	var s model.InterviewSession
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	return &s, err
}

// SaveConversation 仅对进行中的会话生效，会话已结束时返回 ErrRecordNotFound
func (r *InterviewSessionRepository) SaveConversation(s *model.InterviewSession) error {
	res := r.DB.Model(&model.InterviewSession{}).
		Where("id = ? AND status = ?", s.ID, model.SessionInProgress).
		Update("conversation", s.Conversation)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Complete 写入评估并结束会话。返回 false 表示会话已被其它请求结束，评估未写入。
func (r *InterviewSessionRepository) Complete(s *model.InterviewSession) (bool, error) {
	res := r.DB.Model(&model.InterviewSession{ID: s.ID}).
		Where("status = ?", model.SessionInProgress).
		Select("status", "evaluation", "ended_at", "duration_seconds").
		Updates(s)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *InterviewSessionRepository) ListCompleted(userID uint, limit int) ([]model.InterviewSession, error) {
	var sessions []model.InterviewSession
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.SessionCompleted).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
