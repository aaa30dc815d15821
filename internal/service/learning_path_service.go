package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"

	"gorm.io/gorm"
)

type LearningPathService struct {
	Repo     *repository.LearningPathRepository
	Narrator Narrator
	now      func() time.Time
}

func NewLearningPathService(repo *repository.LearningPathRepository, narrator Narrator) *LearningPathService {
	return &LearningPathService{
		Repo:     repo,
		Narrator: narrator,
		now:      time.Now,
	}
}

type GeneratePathInput struct {
	Position       string `json:"position" binding:"required"`
	JobDescription string `json:"job_description"`
}

// Generate 生成学习路线图并保存，内容为空时不落库
func (s *LearningPathService) Generate(ctx context.Context, userID uint, in GeneratePathInput) (*model.LearningPath, error) {
	position := strings.TrimSpace(in.Position)
	if position == "" {
		return nil, util.NewValidation("职位名称不能为空")
	}

	output, err := s.Narrator.Narrate(ctx, NarrativeRequest{
		UserID:         userID,
		Position:       position,
		JobDescription: in.JobDescription,
		Type:           model.ContentMindmap,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(output) == "" {
		return nil, util.ErrEmptyGeneration
	}

	path := &model.LearningPath{
		UserID:         userID,
		Position:       position,
		JobDescription: in.JobDescription,
		GeneratedContent: model.GeneratedContent{
			Output:         output,
			GeneratedTypes: []string{string(model.ContentMindmap)},
			Metadata: &model.ContentMetadata{
				Position:  position,
				Timestamp: s.now().Format(time.RFC3339),
			},
		},
	}
	if err := s.Repo.Create(path); err != nil {
		return nil, err
	}
	return path, nil
}

func (s *LearningPathService) List(userID uint, page, limit int) ([]model.LearningPath, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return s.Repo.ListByUser(userID, page, limit)
}

func (s *LearningPathService) Get(userID, pathID uint) (*model.LearningPath, error) {
	path, err := s.Repo.FindByIDForUser(pathID, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLearningPathNotFound)
	}
	return path, nil
}

// Delete 级联删除题目、做题状态与学习进度
func (s *LearningPathService) Delete(userID, pathID uint) error {
	return notFoundAs(s.Repo.DeleteCascade(pathID, userID), util.ErrLearningPathNotFound)
}

// notFoundAs 把 gorm 的记录不存在替换为业务错误
func notFoundAs(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
