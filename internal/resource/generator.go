package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/pkg/logger"
	"zhitu_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// generatedItem 大模型返回的单条资源，字段类型不可靠
type generatedItem struct {
	Title       flexString `json:"title"`
	Author      flexString `json:"author"`
	Publisher   flexString `json:"publisher"`
	Rating      flexString `json:"rating"`
	Description flexString `json:"description"`
	URL         flexString `json:"url"`
	Issuer      flexString `json:"issuer"`
	Level       flexString `json:"level"`
	Validity    flexString `json:"validity"`
}

// generationSpec 一种资源的兜底生成参数
type generationSpec struct {
	kind        string
	listKey     string
	system      string
	strategies  []string
	temperature float32
	maxTokens   int
	prompt      func(query, strategy string) string
	standardize func(query string, it generatedItem) model.ResourceItem
	pointer     func(query string) model.ResourceItem
}

// Generator 目录耗尽后由大模型生成资源，失败时返回搜索入口
type Generator struct {
	llm llm.Completer
	now func() time.Time
}

func NewGenerator(c llm.Completer) *Generator {
	return &Generator{llm: c, now: time.Now}
}

// strategyIndex 页码加时间种子，保证相邻请求得到不同的推荐角度
func (g *Generator) strategyIndex(page, n int) int {
	seed := int(g.now().Unix() % 100)
	return (page + seed) % n
}

func (g *Generator) Generate(ctx context.Context, spec generationSpec, query string, page int) []model.ResourceItem {
	strategy := spec.strategies[g.strategyIndex(page, len(spec.strategies))]

	items, err := g.generate(ctx, spec, query, strategy)
	if err != nil || len(items) == 0 {
		reason := "empty"
		if err != nil {
			reason = "error"
		}
		logger.Log.Warn("大模型资源生成失败，返回搜索入口",
			zap.String("kind", spec.kind),
			zap.String("query", query),
			zap.String("strategy", strategy),
			zap.Error(err))
		monitoring.ResourceFallbacks.WithLabelValues(spec.kind+"_generator", reason).Inc()
		return []model.ResourceItem{spec.pointer(query)}
	}
	return items
}

func (g *Generator) generate(ctx context.Context, spec generationSpec, query, strategy string) ([]model.ResourceItem, error) {
	if g.llm == nil {
		return nil, fmt.Errorf("generator: no llm configured")
	}
	out, err := g.llm.Complete(ctx, llm.Request{
		Purpose:     spec.kind + "_generate",
		System:      spec.system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: spec.prompt(query, strategy)}},
		Temperature: spec.temperature,
		MaxTokens:   spec.maxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	var parsed map[string]json.RawMessage
	if err := llm.ExtractJSON(out, &parsed); err != nil {
		return nil, err
	}
	var raw []generatedItem
	if list, ok := parsed[spec.listKey]; ok {
		if err := json.Unmarshal(list, &raw); err != nil {
			return nil, fmt.Errorf("generator: %s: %w", spec.listKey, err)
		}
	}

	items := make([]model.ResourceItem, 0, len(raw))
	for _, it := range raw {
		if strings.TrimSpace(it.Title.String()) == "" && it.URL == "" {
			continue
		}
		items = append(items, spec.standardize(query, it))
	}
	return items, nil
}

func orDefault(v flexString, def string) string {
	if s := strings.TrimSpace(v.String()); s != "" {
		return s
	}
	return def
}
