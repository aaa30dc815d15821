package repository

import (
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type InterviewQuestionRepository struct {
	DB *gorm.DB
}

func NewInterviewQuestionRepository(db *gorm.DB) *InterviewQuestionRepository {
	return &InterviewQuestionRepository{DB: db}
}

func (r *InterviewQuestionRepository) CreateBatch(questions []model.InterviewQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(questions, 100).Error
}

func (r *InterviewQuestionRepository) FindByID(id uint) (*model.InterviewQuestion, error) {
	var q model.InterviewQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *InterviewQuestionRepository) ListByPath(pathID uint) ([]model.InterviewQuestion, error) {
	var qs []model.InterviewQuestion
	err := r.DB.Where("learning_path_id = ?", pathID).Order("id ASC").Find(&qs).Error
	return qs, err
}

func (r *InterviewQuestionRepository) CountByPath(pathID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&model.InterviewQuestion{}).Where("learning_path_id = ?", pathID).Count(&n).Error
	return n, err
}

// ListWithStatus status 为空或 all 时不过滤
func (r *InterviewQuestionRepository) ListWithStatus(pathID, userID uint, status string) ([]model.QuestionWithStatus, error) {
	var rows []model.QuestionWithStatus
	query := r.DB.Table("interview_questions AS q").
		Select("q.*, COALESCE(s.status, ?) AS status, COALESCE(s.review_count, 0) AS review_count, s.last_reviewed_at", model.StatusNotSeen).
		Joins("LEFT JOIN question_status s ON s.question_id = q.id AND s.user_id = ?", userID).
		Where("q.learning_path_id = ?", pathID)
	if status != "" && status != "all" {
		query = query.Where("COALESCE(s.status, ?) = ?", model.StatusNotSeen, status)
	}
	err := query.Order("q.id ASC").Scan(&rows).Error
	return rows, err
}

// ListMistakes 用户所有路线下标记为未掌握的题目，最近复习的在前
func (r *InterviewQuestionRepository) ListMistakes(userID uint, pathID uint) ([]model.QuestionWithStatus, error) {
	var rows []model.QuestionWithStatus
	query := r.DB.Table("interview_questions AS q").
		Select("q.*, s.status, s.review_count, s.last_reviewed_at, p.position").
		Joins("JOIN question_status s ON s.question_id = q.id AND s.user_id = ?", userID).
		Joins("JOIN learning_paths p ON p.id = q.learning_path_id AND p.user_id = ? AND p.deleted_at IS NULL", userID).
		Where("s.status = ?", model.StatusNotMastered)
	if pathID > 0 {
		query = query.Where("q.learning_path_id = ?", pathID)
	}
	err := query.Order("s.updated_at DESC, q.id ASC").Scan(&rows).Error
	return rows, err
}
