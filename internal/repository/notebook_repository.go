package repository

import (
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type NotebookRepository struct {
	DB *gorm.DB
}

func NewNotebookRepository(db *gorm.DB) *NotebookRepository {
	return &NotebookRepository{DB: db}
}

// EnsureDefaults 用户没有任何笔记本时创建默认笔记本
func (r *NotebookRepository) EnsureDefaults(userID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Notebook{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		defaults := model.DefaultNotebooks(userID)
		return tx.Create(&defaults).Error
	})
}

// ListWithCounts 默认笔记本在前，note_count 只统计未删除的笔记
func (r *NotebookRepository) ListWithCounts(userID uint) ([]model.Notebook, error) {
	var books []model.Notebook
	counts := r.DB.Model(&model.Note{}).
		Select("COUNT(*)").
		Where("notes.notebook_id = notebooks.id")
	err := r.DB.Model(&model.Notebook{}).
		Select("notebooks.*, (?) AS note_count", counts).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&books).Error
	return books, err
}

func (r *NotebookRepository) Create(b *model.Notebook) error {
	return r.DB.Create(b).Error
}

func (r *NotebookRepository) FindByIDForUser(id, userID uint) (*model.Notebook, error) {
	var b model.Notebook
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&b).Error
	return &b, err
}

func (r *NotebookRepository) FindByName(userID uint, name string) (*model.Notebook, error) {
	var b model.Notebook
	err := r.DB.Where("user_id = ? AND name = ?", userID, name).Order("is_default DESC, id ASC").First(&b).Error
	return &b, err
}

func (r *NotebookRepository) Update(b *model.Notebook) error {
	return r.DB.Model(b).Select("name", "description", "icon").Updates(b).Error
}

// DeleteMovingNotes 删除笔记本，其中的笔记移入 moveTo
func (r *NotebookRepository) DeleteMovingNotes(b *model.Notebook, moveTo uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Note{}).
			Where("notebook_id = ? AND user_id = ?", b.ID, b.UserID).
			Update("notebook_id", moveTo).Error; err != nil {
			return err
		}
		return tx.Delete(b).Error
	})
}
