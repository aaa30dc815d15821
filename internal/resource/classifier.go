package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/pkg/logger"
	"zhitu_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CategoryCache 缓存分类结果，避免相同关键词重复调用大模型
type CategoryCache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, categories []string)
}

type RedisCategoryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCategoryCache(rdb *redis.Client, ttl time.Duration) *RedisCategoryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCategoryCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCategoryCache) Get(ctx context.Context, key string) ([]string, bool) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("读取分类缓存失败", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var cats []string
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return nil, false
	}
	return cats, true
}

func (c *RedisCategoryCache) Set(ctx context.Context, key string, categories []string) {
	b, _ := json.Marshal(categories)
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.Log.Warn("写入分类缓存失败", zap.String("key", key), zap.Error(err))
	}
}

// classifyPrompt 不同资源类型的分类提示词
type classifyPrompt struct {
	role     string
	subject  string
	want     string
	examples []string
}

// Classifier 将关键词映射到目录分类。
// 大模型失败或无有效分类时退化为子串匹配，可能返回空。
type Classifier struct {
	llm   llm.Completer
	cache CategoryCache
}

func NewClassifier(c llm.Completer, cache CategoryCache) *Classifier {
	return &Classifier{llm: c, cache: cache}
}

func (c *Classifier) Classify(ctx context.Context, kind, query string, p classifyPrompt, available []string) []string {
	key := "zhitu:category:" + kind + ":" + strings.ToLower(strings.TrimSpace(query))
	if c.cache != nil {
		if cats, ok := c.cache.Get(ctx, key); ok {
			return cats
		}
	}

	cats, err := c.classifyWithLLM(ctx, kind, query, p, available)
	if err == nil && len(cats) > 0 {
		if c.cache != nil {
			c.cache.Set(ctx, key, cats)
		}
		return cats
	}

	reason := "empty"
	if err != nil {
		reason = "error"
	}
	logger.Log.Warn("大模型分类不可用，使用关键词匹配",
		zap.String("kind", kind),
		zap.String("query", query),
		zap.Error(err))
	monitoring.ResourceFallbacks.WithLabelValues(kind+"_classifier", reason).Inc()
	return substringMatch(query, available)
}

func (c *Classifier) classifyWithLLM(ctx context.Context, kind, query string, p classifyPrompt, available []string) ([]string, error) {
	if c.llm == nil {
		return nil, fmt.Errorf("classifier: no llm configured")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "你是一个%s。根据给定的职位/关键词，分析它需要哪些技术方向的%s。\n\n", p.role, p.subject)
	fmt.Fprintf(&b, "可用的分类：%s\n\n", strings.Join(available, ", "))
	fmt.Fprintf(&b, "职位/关键词：%s\n\n", query)
	fmt.Fprintf(&b, "请按重要性排序，返回最相关的%s个分类。\n\n", p.want)
	b.WriteString("要求：\n1. 只返回JSON格式：{\"categories\": [\"分类1\", \"分类2\"]}\n2. 分类必须从可用列表中选择\n3. 最重要的放前面\n")
	if len(p.examples) > 0 {
		b.WriteString("\n示例：\n")
		for _, ex := range p.examples {
			b.WriteString("- " + ex + "\n")
		}
	}

	out, err := c.llm.Complete(ctx, llm.Request{
		Purpose:     kind + "_classify",
		System:      fmt.Sprintf("你是一个%s。只返回JSON格式，不要有其他内容。", p.role),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: b.String()}},
		Temperature: 0.3,
		MaxTokens:   500,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Categories []string `json:"categories"`
	}
	if err := llm.ExtractJSON(out, &parsed); err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(available))
	for _, a := range available {
		allowed[a] = true
	}
	var valid []string
	seen := map[string]bool{}
	for _, cat := range parsed.Categories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if allowed[cat] && !seen[cat] {
			seen[cat] = true
			valid = append(valid, cat)
		}
	}
	return valid, nil
}

func substringMatch(query string, available []string) []string {
	q := strings.ToLower(query)
	var matched []string
	for _, cat := range available {
		if strings.Contains(q, cat) {
			matched = append(matched, cat)
		}
	}
	return matched
}
