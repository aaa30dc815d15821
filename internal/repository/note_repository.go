package repository

import (
	"zhitu_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteFilter struct {
	Tag        string
	NotebookID uint
}

type NoteRepository struct {
	DB *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) Create(n *model.Note) error {
	return r.DB.Create(n).Error
}

func (r *NoteRepository) FindByIDForUser(id, userID uint) (*model.Note, error) {
	var n model.Note
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&n).Error
	return &n, err
}

// List 按更新时间倒序
func (r *NoteRepository) List(userID uint, f NoteFilter, page, pageSize int) ([]model.Note, int64, error) {
	var notes []model.Note
	var total int64
	query := r.DB.Model(&model.Note{}).Where("user_id = ?", userID)
	if f.NotebookID > 0 {
		query = query.Where("notebook_id = ?", f.NotebookID)
	}
	if f.Tag != "" {
		query = query.Where(datatypes.JSONArrayQuery("tags").Contains(f.Tag))
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("updated_at DESC, id DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&notes).Error
	return notes, total, err
}

func (r *NoteRepository) Update(n *model.Note) error {
	return r.DB.Model(n).Select("title", "content", "tags", "notebook_id", "editor_mode").Updates(n).Error
}

func (r *NoteRepository) Delete(n *model.Note) error {
	return r.DB.Delete(n).Error
}
