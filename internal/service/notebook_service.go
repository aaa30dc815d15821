package service

import (
	"strings"
	"unicode/utf8"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	notebookNameRunes = 100
	defaultNoteIcon   = "📚"
)

type NotebookService struct {
	Repo *repository.NotebookRepository
}

func NewNotebookService(repo *repository.NotebookRepository) *NotebookService {
	return &NotebookService{Repo: repo}
}

type NotebookInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// List 首次访问时补齐默认笔记本
func (s *NotebookService) List(userID uint) ([]model.Notebook, error) {
	if err := s.Repo.EnsureDefaults(userID); err != nil {
		return nil, err
	}
	return s.Repo.ListWithCounts(userID)
}

func (s *NotebookService) Create(userID uint, in NotebookInput) (*model.Notebook, error) {
	name, err := notebookName(in.Name)
	if err != nil {
		return nil, err
	}
	// 先补齐默认笔记本，保证日常笔记始终存在
	if err := s.Repo.EnsureDefaults(userID); err != nil {
		return nil, err
	}
	icon := strings.TrimSpace(in.Icon)
	if icon == "" {
		icon = defaultNoteIcon
	}
	b := &model.Notebook{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Icon:        icon,
	}
	if err := s.Repo.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *NotebookService) Update(userID, id uint, in NotebookInput) (*model.Notebook, error) {
	b, err := s.Repo.FindByIDForUser(id, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrNotebookNotFound)
	}
	name, err := notebookName(in.Name)
	if err != nil {
		return nil, err
	}
	b.Name = name
	b.Description = strings.TrimSpace(in.Description)
	if icon := strings.TrimSpace(in.Icon); icon != "" {
		b.Icon = icon
	}
	if err := s.Repo.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete 默认笔记本不可删除，其余笔记本中的笔记移入日常笔记
func (s *NotebookService) Delete(userID, id uint) error {
	b, err := s.Repo.FindByIDForUser(id, userID)
	if err != nil {
		return notFoundAs(err, util.ErrNotebookNotFound)
	}
	if b.IsDefault {
		return util.ErrDefaultNotebook
	}
	target, err := s.DefaultNotebook(userID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteMovingNotes(b, target.ID); err != nil {
		return err
	}
	logger.Log.Info("笔记本已删除",
		zap.Uint("user_id", userID),
		zap.Uint("notebook_id", id),
		zap.Uint("moved_to", target.ID),
	)
	return nil
}

// DefaultNotebook 日常笔记，不存在时先补齐默认笔记本
func (s *NotebookService) DefaultNotebook(userID uint) (*model.Notebook, error) {
	return s.ByName(userID, model.DefaultNotebookName)
}

func (s *NotebookService) ByName(userID uint, name string) (*model.Notebook, error) {
	if err := s.Repo.EnsureDefaults(userID); err != nil {
		return nil, err
	}
	b, err := s.Repo.FindByName(userID, name)
	if err != nil {
		return nil, notFoundAs(err, util.ErrNotebookNotFound)
	}
	return b, nil
}

func notebookName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", util.NewValidation("笔记本名称不能为空")
	}
	if utf8.RuneCountInString(name) > notebookNameRunes {
		return "", util.NewValidation("笔记本名称不能超过100个字符")
	}
	return name, nil
}
