package repository

import (
	"zhitu_backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

// History 返回按写入顺序排列的一页记录，offset 从最新一条往前数
func (r *ChatRepository) History(userID uint, offset, limit int) ([]model.ChatMessage, error) {
	var msgs []model.ChatMessage
	err := r.DB.Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Recent 最近 n 条，时间正序
func (r *ChatRepository) Recent(userID uint, n int) ([]model.ChatMessage, error) {
	return r.History(userID, 0, n)
}

// SaveExchange 一问一答同时写入
func (r *ChatRepository) SaveExchange(question, answer *model.ChatMessage) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		return tx.Create(answer).Error
	})
}

func (r *ChatRepository) Clear(userID uint) (int64, error) {
	res := r.DB.Where("user_id = ?", userID).Delete(&model.ChatMessage{})
	return res.RowsAffected, res.Error
}
