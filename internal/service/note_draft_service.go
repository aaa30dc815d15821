package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/resource"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	DraftFromMistakes     = "mistakes"
	DraftFromInterview    = "interview"
	DraftFromLearningPath = "learning_path"
)

const (
	draftInterviewLimit = 20
	draftWeakCategories = 5
	draftPointsPerGroup = 5
	draftMaxTokens      = 2000
)

// DraftOptions 布尔项缺省为 true
type DraftOptions struct {
	IncludeWeakPoints    *bool  `json:"include_weak_points"`
	IncludeStudyPlan     *bool  `json:"include_study_plan"`
	IncludeInterviewTips *bool  `json:"include_interview_tips"`
	CustomRequirements   string `json:"custom_requirements"`
}

func (o DraftOptions) weakPoints() bool    { return o.IncludeWeakPoints == nil || *o.IncludeWeakPoints }
func (o DraftOptions) studyPlan() bool     { return o.IncludeStudyPlan == nil || *o.IncludeStudyPlan }
func (o DraftOptions) interviewTips() bool { return o.IncludeInterviewTips == nil || *o.IncludeInterviewTips }

type DraftInput struct {
	SourceType string       `json:"source_type" binding:"required"`
	SourceID   uint         `json:"source_id" binding:"required"`
	Options    DraftOptions `json:"options"`
}

type DraftMetadata struct {
	Source         string    `json:"source"`
	LearningPathID uint      `json:"learning_path_id"`
	Position       string    `json:"position"`
	MistakesCount  int       `json:"mistakes_count"`
	GeneratedAt    time.Time `json:"generated_at"`
}

type NoteDraft struct {
	Title             string        `json:"title"`
	Content           string        `json:"content"`
	SuggestedNotebook string        `json:"suggested_notebook"`
	Metadata          DraftMetadata `json:"metadata"`
}

// NoteDraftService 根据错题、题库或学习路线生成笔记草稿，草稿不落库
type NoteDraftService struct {
	PathRepo     *repository.LearningPathRepository
	QuestionRepo *repository.InterviewQuestionRepository
	LLM          llm.Completer
	now          func() time.Time
}

func NewNoteDraftService(
	pathRepo *repository.LearningPathRepository,
	questionRepo *repository.InterviewQuestionRepository,
	c llm.Completer,
) *NoteDraftService {
	return &NoteDraftService{
		PathRepo:     pathRepo,
		QuestionRepo: questionRepo,
		LLM:          c,
		now:          time.Now,
	}
}

// draftSource 组装好的提示数据
type draftSource struct {
	items    []draftItem
	weak     []weakGroup
	progress string
	count    int
	title    string
	notebook string
}

func (s *NoteDraftService) Generate(ctx context.Context, userID uint, in DraftInput) (*NoteDraft, error) {
	sourceType := strings.TrimSpace(in.SourceType)
	switch sourceType {
	case DraftFromMistakes, DraftFromInterview, DraftFromLearningPath:
	default:
		return nil, util.NewValidation("不支持的数据源类型: " + sourceType)
	}

	path, err := s.PathRepo.FindByIDForUser(in.SourceID, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLearningPathNotFound)
	}

	var src *draftSource
	switch sourceType {
	case DraftFromMistakes:
		src, err = s.fromMistakes(userID, path)
	case DraftFromInterview:
		src, err = s.fromInterview(path)
	default:
		src = fromLearningPath(path)
	}
	if err != nil {
		return nil, err
	}

	content, err := s.LLM.Complete(ctx, llm.Request{
		Purpose: "note_draft",
		System:  noteDraftSystemPrompt,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: noteDraftPrompt(path.Position, src.items, src.weak, src.progress, in.Options),
		}},
		Temperature: 0.7,
		MaxTokens:   draftMaxTokens,
	})
	if err != nil {
		logger.Log.Warn("笔记草稿生成失败",
			zap.Uint("user_id", userID),
			zap.Uint("learning_path_id", path.ID),
			zap.String("source", sourceType),
			zap.Error(err),
		)
		return nil, util.NewUpstream("AI笔记生成失败，请稍后重试", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, util.ErrEmptyGeneration
	}

	return &NoteDraft{
		Title:             fmt.Sprintf("%s - %s", path.Position, src.title),
		Content:           content,
		SuggestedNotebook: src.notebook,
		Metadata: DraftMetadata{
			Source:         sourceType,
			LearningPathID: path.ID,
			Position:       path.Position,
			MistakesCount:  src.count,
			GeneratedAt:    s.now(),
		},
	}, nil
}

func (s *NoteDraftService) fromMistakes(userID uint, path *model.LearningPath) (*draftSource, error) {
	rows, err := s.QuestionRepo.ListWithStatus(path.ID, userID, "")
	if err != nil {
		return nil, err
	}

	var mistakes []model.QuestionWithStatus
	mastered := 0
	for _, q := range rows {
		switch q.Status {
		case model.StatusNotMastered:
			mistakes = append(mistakes, q)
		case model.StatusMastered:
			mastered++
		}
	}

	items := make([]draftItem, 0, len(mistakes))
	for _, q := range mistakes {
		items = append(items, draftItem{Question: q.Question, Reason: "未掌握", Answer: q.Answer})
	}
	if len(items) > maxDraftItems {
		items = items[:maxDraftItems]
	}

	rate := 0.0
	if len(rows) > 0 {
		rate = float64(mastered) / float64(len(rows)) * 100
	}
	return &draftSource{
		items:    items,
		weak:     groupWeakPoints(mistakes, draftWeakCategories),
		progress: fmt.Sprintf("总题数：%d，已掌握：%d（%.1f%%），未掌握：%d", len(rows), mastered, rate, len(mistakes)),
		count:    len(items),
		title:    "错题总结笔记",
		notebook: "错题本",
	}, nil
}

func (s *NoteDraftService) fromInterview(path *model.LearningPath) (*draftSource, error) {
	questions, err := s.QuestionRepo.ListByPath(path.ID)
	if err != nil {
		return nil, err
	}
	if len(questions) > draftInterviewLimit {
		questions = questions[:draftInterviewLimit]
	}

	items := make([]draftItem, 0, len(questions))
	rows := make([]model.QuestionWithStatus, 0, len(questions))
	for _, q := range questions {
		items = append(items, draftItem{Question: q.Question, Answer: q.Answer})
		rows = append(rows, model.QuestionWithStatus{InterviewQuestion: q})
	}
	return &draftSource{
		items:    items,
		weak:     groupWeakPoints(rows, 0),
		progress: fmt.Sprintf("共 %d 道面试题", len(questions)),
		count:    len(questions),
		title:    "面试题总结笔记",
		notebook: "面试笔记",
	}, nil
}

// fromLearningPath 技能点取自路线图的加粗词和技术名词
func fromLearningPath(path *model.LearningPath) *draftSource {
	skills := resource.ExtractKeywords(path.Position, path.GeneratedContent.Output)
	if len(skills) > 0 && strings.EqualFold(skills[0], path.Position) {
		skills = skills[1:]
	}

	items := make([]draftItem, 0, len(skills))
	for _, sk := range skills {
		items = append(items, draftItem{Question: "技能点：" + sk, Reason: "需要掌握", Answer: "系统学习该技能点"})
	}
	core := skills
	if len(core) > draftPointsPerGroup {
		core = core[:draftPointsPerGroup]
	}

	progress := "已生成内容：" + strings.Join(path.GeneratedContent.GeneratedTypes, "、")
	return &draftSource{
		items:    items,
		weak:     []weakGroup{{Category: "核心技能", Points: core}},
		progress: progress,
		count:    len(skills),
		title:    "学习路径笔记",
		notebook: "学习笔记",
	}
}

// groupWeakPoints 按分类聚合知识点，分类按题数降序，limit 为 0 时不限分类数
func groupWeakPoints(rows []model.QuestionWithStatus, limit int) []weakGroup {
	cats, _ := weakSpots(rows)
	if limit > 0 && len(cats) > limit {
		cats = cats[:limit]
	}
	groups := make([]weakGroup, 0, len(cats))
	for _, c := range cats {
		seen := map[string]struct{}{}
		var points []string
		for _, q := range rows {
			if strings.TrimSpace(q.Category) != c.Category {
				continue
			}
			for _, kp := range q.KnowledgePoints {
				kp = strings.TrimSpace(kp)
				if _, dup := seen[kp]; kp == "" || dup {
					continue
				}
				seen[kp] = struct{}{}
				points = append(points, kp)
			}
		}
		if len(points) > draftPointsPerGroup {
			points = points[:draftPointsPerGroup]
		}
		groups = append(groups, weakGroup{Category: c.Category, Points: points})
	}
	return groups
}
