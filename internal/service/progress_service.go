package service

import (
	"math"
	"strings"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
)

type ProgressService struct {
	Repo     *repository.ProgressRepository
	PathRepo *repository.LearningPathRepository
}

func NewProgressService(repo *repository.ProgressRepository, pathRepo *repository.LearningPathRepository) *ProgressService {
	return &ProgressService{Repo: repo, PathRepo: pathRepo}
}

// MarkProgressInput 未传的标记保持原值，新建时默认为 false
type MarkProgressInput struct {
	LearningPathID uint   `json:"learning_path_id" binding:"required"`
	ContentID      string `json:"content_id" binding:"required"`
	ContentType    string `json:"content_type"`
	Mastered       *bool  `json:"mastered"`
	NeedsReview    *bool  `json:"needs_review"`
}

type ProgressStats struct {
	TotalItems    int64   `json:"total_items"`
	MasteredItems int64   `json:"mastered_items"`
	ReviewItems   int64   `json:"review_items"`
	MasteryRate   float64 `json:"mastery_rate"`
}

func (s *ProgressService) Mark(userID uint, in MarkProgressInput) (*model.LearningProgress, error) {
	contentID := strings.TrimSpace(in.ContentID)
	if contentID == "" {
		return nil, util.NewValidation("content_id 不能为空")
	}
	if _, err := s.PathRepo.FindByIDForUser(in.LearningPathID, userID); err != nil {
		return nil, notFoundAs(err, util.ErrLearningPathNotFound)
	}
	return s.Repo.Mark(userID, in.LearningPathID, contentID, strings.TrimSpace(in.ContentType), in.Mastered, in.NeedsReview)
}

// Stats pathID 为 0 时统计全部路线，掌握率保留两位小数
func (s *ProgressService) Stats(userID, pathID uint) (*ProgressStats, error) {
	c, err := s.Repo.Counts(userID, pathID)
	if err != nil {
		return nil, err
	}
	st := &ProgressStats{
		TotalItems:    c.Total,
		MasteredItems: c.Mastered,
		ReviewItems:   c.NeedsReview,
	}
	if c.Total > 0 {
		st.MasteryRate = math.Round(float64(c.Mastered)/float64(c.Total)*10000) / 100
	}
	return st, nil
}
