package repository

import (
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type LearningPathRepository struct {
	DB *gorm.DB
}

func NewLearningPathRepository(db *gorm.DB) *LearningPathRepository {
	return &LearningPathRepository{DB: db}
}

func (r *LearningPathRepository) Create(path *model.LearningPath) error {
	return r.DB.Create(path).Error
}

// FindByIDForUser 不属于该用户的路线按不存在处理
func (r *LearningPathRepository) FindByIDForUser(id, userID uint) (*model.LearningPath, error) {
	var p model.LearningPath
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&p).Error
	return &p, err
}

func (r *LearningPathRepository) ListByUser(userID uint, page, pageSize int) ([]model.LearningPath, int64, error) {
	var paths []model.LearningPath
	var total int64
	query := r.DB.Model(&model.LearningPath{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&paths).Error
	return paths, total, err
}

// SaveContent 只写 generated_content 列，内容缓存的唯一持久化入口
func (r *LearningPathRepository) SaveContent(path *model.LearningPath) error {
	res := r.DB.Model(&model.LearningPath{}).
		Where("id = ? AND user_id = ?", path.ID, path.UserID).
		Update("generated_content", path.GeneratedContent)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCascade 删除路线及其题目、掌握状态、学习进度，模拟面试记录与笔记保留但解除关联
func (r *LearningPathRepository) DeleteCascade(id, userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var p model.LearningPath
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&p).Error; err != nil {
			return err
		}

		questionIDs := tx.Model(&model.InterviewQuestion{}).Select("id").Where("learning_path_id = ?", id)
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.QuestionStatus{}).Error; err != nil {
			return err
		}
		if err := tx.Where("learning_path_id = ?", id).Delete(&model.InterviewQuestion{}).Error; err != nil {
			return err
		}
		if err := tx.Where("learning_path_id = ?", id).Delete(&model.LearningProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.InterviewSession{}).
			Where("learning_path_id = ?", id).
			Update("learning_path_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Note{}).
			Where("learning_path_id = ?", id).
			Update("learning_path_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}
