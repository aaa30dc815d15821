package repository

import (
	"errors"
	"time"
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionStatusRepository struct {
	DB *gorm.DB
}

func NewQuestionStatusRepository(db *gorm.DB) *QuestionStatusRepository {
	return &QuestionStatusRepository{DB: db}
}

// Upsert 首次标记时创建（review_count=1），之后每次更新 review_count 加一
func (r *QuestionStatusRepository) Upsert(userID, questionID uint, status model.QuestionState, at time.Time) (*model.QuestionStatus, error) {
	var qs model.QuestionStatus
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND question_id = ?", userID, questionID).First(&qs).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			qs = model.QuestionStatus{
				UserID:         userID,
				QuestionID:     questionID,
				Status:         status,
				ReviewCount:    1,
				LastReviewedAt: &at,
			}
			return tx.Create(&qs).Error
		}
		if err != nil {
			return err
		}

		err = tx.Model(&model.QuestionStatus{}).
			Where("id = ?", qs.ID).
			Updates(map[string]interface{}{
				"status":           status,
				"review_count":     gorm.Expr("review_count + ?", 1),
				"last_reviewed_at": at,
			}).Error
		if err != nil {
			return err
		}
		return tx.First(&qs, qs.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &qs, nil
}

func (r *QuestionStatusRepository) Find(userID, questionID uint) (*model.QuestionStatus, error) {
	var qs model.QuestionStatus
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).First(&qs).Error
	return &qs, err
}
