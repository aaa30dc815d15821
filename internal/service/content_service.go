package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/resource"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/logger"
	"zhitu_backend/pkg/monitoring"
	"zhitu_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MergeStrategy 新生成内容写回缓存的方式
type MergeStrategy int

const (
	// MergeReplace 长文本整体写入，生成一次后即缓存
	MergeReplace MergeStrategy = iota
	// MergeAppend 资源列表按 url 去重追加，可反复扩充
	MergeAppend
)

// Generation 一次生成的结果，Text 与 Items 按合并方式二选一
type Generation struct {
	Text  string
	Items []model.ResourceItem
	Page  int
}

type ContentHandler interface {
	IsCacheable(gc *model.GeneratedContent) bool
	MergeStrategy() MergeStrategy
	Generate(ctx context.Context, path *model.LearningPath) (*Generation, error)
}

type resourceHandler struct {
	kind    model.ContentType
	adapter resource.Adapter
	catalog *resource.Catalog
}

func (h *resourceHandler) IsCacheable(*model.GeneratedContent) bool { return false }

func (h *resourceHandler) MergeStrategy() MergeStrategy { return MergeAppend }

func (h *resourceHandler) Generate(ctx context.Context, path *model.LearningPath) (*Generation, error) {
	page := path.GeneratedContent.Cursor(h.kind) + 1
	keywords := resource.ExtractKeywords(path.Position, path.GeneratedContent.Output)

	items, err := h.adapter.Search(ctx, keywords, page)
	if err != nil {
		logger.Log.Warn("资源搜索失败，使用本地资源库",
			zap.String("type", string(h.kind)),
			zap.Strings("keywords", keywords),
			zap.Int("page", page),
			zap.Error(err),
		)
		// 本地资源库无匹配时保留数据源返回的搜索入口
		if matched := h.catalog.Match(h.kind, keywords); len(matched) > 0 {
			monitoring.ResourceFallbacks.WithLabelValues(string(h.kind), "catalog").Inc()
			items = matched
		}
	}
	return &Generation{Items: items, Page: page}, nil
}

type narrativeHandler struct {
	kind     model.ContentType
	narrator Narrator
}

func (h *narrativeHandler) IsCacheable(gc *model.GeneratedContent) bool {
	return gc.HasGenerated(h.kind) && strings.TrimSpace(gc.Narrative(h.kind)) != ""
}

func (h *narrativeHandler) MergeStrategy() MergeStrategy { return MergeReplace }

func (h *narrativeHandler) Generate(ctx context.Context, path *model.LearningPath) (*Generation, error) {
	text, err := h.narrator.Narrate(ctx, NarrativeRequest{
		UserID:         path.UserID,
		Position:       path.Position,
		JobDescription: path.JobDescription,
		Type:           h.kind,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, util.ErrEmptyGeneration
	}
	return &Generation{Text: text}, nil
}

// GenerateResult 内容生成接口的返回
type GenerateResult struct {
	Success         bool        `json:"success"`
	Message         string      `json:"message"`
	Content         interface{} `json:"content"`
	FromCache       bool        `json:"from_cache"`
	NoMoreResources bool        `json:"no_more_resources"`
	Added           int         `json:"added"`
}

type ContentService struct {
	PathRepo *repository.LearningPathRepository
	handlers map[model.ContentType]ContentHandler
}

func NewContentService(
	pathRepo *repository.LearningPathRepository,
	narrator Narrator,
	adapters map[model.ContentType]resource.Adapter,
	catalog *resource.Catalog,
) *ContentService {
	s := &ContentService{
		PathRepo: pathRepo,
		handlers: make(map[model.ContentType]ContentHandler),
	}
	for kind, adapter := range adapters {
		s.Register(kind, &resourceHandler{kind: kind, adapter: adapter, catalog: catalog})
	}
	for _, kind := range []model.ContentType{model.ContentKnowledge, model.ContentInterviewTips, model.ContentMindmap} {
		s.Register(kind, &narrativeHandler{kind: kind, narrator: narrator})
	}
	return s
}

// Register 新增或替换某内容类型的处理器
func (s *ContentService) Register(kind model.ContentType, h ContentHandler) {
	s.handlers[kind] = h
}

func (s *ContentService) GenerateContent(ctx context.Context, userID, pathID uint, rawType string) (*GenerateResult, error) {
	kind, ok := model.ParseContentType(rawType)
	if !ok {
		return nil, util.ErrUnsupportedContent
	}
	h, ok := s.handlers[kind]
	if !ok {
		return nil, util.ErrUnsupportedContent
	}

	path, err := s.PathRepo.FindByIDForUser(pathID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLearningPathNotFound
		}
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "content.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("content.type", string(kind)),
		attribute.Int64("learning_path.id", int64(pathID)),
	)

	gc := &path.GeneratedContent
	label := kind.Label()

	if h.IsCacheable(gc) {
		monitoring.ContentGenerations.WithLabelValues(string(kind), "cached").Inc()
		return &GenerateResult{
			Success:   true,
			Message:   fmt.Sprintf("从缓存加载%s", label),
			Content:   contentOf(gc, kind),
			FromCache: true,
		}, nil
	}

	gen, err := h.Generate(ctx, path)
	if err != nil {
		monitoring.ContentGenerations.WithLabelValues(string(kind), "failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, err
	}

	var result *GenerateResult
	switch h.MergeStrategy() {
	case MergeAppend:
		added := gc.MergeResources(kind, gen.Items)
		if len(added) == 0 {
			monitoring.ContentGenerations.WithLabelValues(string(kind), "exhausted").Inc()
			return &GenerateResult{
				Message:         fmt.Sprintf("暂无更多%s推荐，已展示所有相关%s", label, label),
				Content:         gc.Resources(kind),
				FromCache:       true,
				NoMoreResources: true,
			}, nil
		}
		gc.AdvanceCursor(kind, gen.Page)
		gc.MarkGenerated(kind)
		result = &GenerateResult{
			Success: true,
			Message: fmt.Sprintf("成功新增 %d 个%s推荐", len(added), label),
			Content: gc.Resources(kind),
			Added:   len(added),
		}
	default:
		gc.SetNarrative(kind, gen.Text)
		gc.MarkGenerated(kind)
		result = &GenerateResult{
			Success: true,
			Message: fmt.Sprintf("%s生成成功", label),
			Content: gen.Text,
		}
	}

	if err := s.PathRepo.SaveContent(path); err != nil {
		monitoring.ContentGenerations.WithLabelValues(string(kind), "failed").Inc()
		return nil, err
	}
	if h.MergeStrategy() == MergeAppend {
		monitoring.ContentGenerations.WithLabelValues(string(kind), "merged").Inc()
	} else {
		monitoring.ContentGenerations.WithLabelValues(string(kind), "generated").Inc()
	}
	return result, nil
}

func contentOf(gc *model.GeneratedContent, kind model.ContentType) interface{} {
	if kind.IsResource() {
		return gc.Resources(kind)
	}
	return gc.Narrative(kind)
}
