package repository

import (
	"errors"
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Mark 按 (用户, 路线, 内容) 更新，nil 的标志保持原值
func (r *ProgressRepository) Mark(userID, pathID uint, contentID, contentType string, mastered, needsReview *bool) (*model.LearningProgress, error) {
	var p model.LearningProgress
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND learning_path_id = ? AND content_id = ?", userID, pathID, contentID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = model.LearningProgress{
				UserID:         userID,
				LearningPathID: pathID,
				ContentID:      contentID,
				ContentType:    contentType,
			}
			if mastered != nil {
				p.Mastered = *mastered
			}
			if needsReview != nil {
				p.NeedsReview = *needsReview
			}
			return tx.Create(&p).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if contentType != "" {
			updates["content_type"] = contentType
		}
		if mastered != nil {
			updates["mastered"] = *mastered
		}
		if needsReview != nil {
			updates["needs_review"] = *needsReview
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&p, p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ProgressCounts struct {
	Total       int64
	Mastered    int64
	NeedsReview int64
}

// Counts pathID 为 0 时统计该用户全部路线
func (r *ProgressRepository) Counts(userID, pathID uint) (*ProgressCounts, error) {
	base := func() *gorm.DB {
		q := r.DB.Model(&model.LearningProgress{}).Where("user_id = ?", userID)
		if pathID > 0 {
			q = q.Where("learning_path_id = ?", pathID)
		}
		return q
	}

	var c ProgressCounts
	if err := base().Count(&c.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("mastered = ?", true).Count(&c.Mastered).Error; err != nil {
		return nil, err
	}
	if err := base().Where("needs_review = ?", true).Count(&c.NeedsReview).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
