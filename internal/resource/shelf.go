package resource

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/util"
)

//go:embed data/*.json
var dataFS embed.FS

func mustLoad(name string, v interface{}) {
	b, err := dataFS.ReadFile("data/" + name)
	if err != nil {
		panic(fmt.Sprintf("resource: read %s: %v", name, err))
	}
	if err := json.Unmarshal(b, v); err != nil {
		panic(fmt.Sprintf("resource: parse %s: %v", name, err))
	}
}

// ShelfAdapter 按分类组织的内置书架（书籍、证书）。
// 分类由 Classifier 给出，书架翻完或不足一页时由 Generator 补齐。
type ShelfAdapter struct {
	kind       string
	limit      int
	categories []string
	shelves    map[string][]model.ResourceItem
	prompt     classifyPrompt
	gen        generationSpec

	classifier *Classifier
	generator  *Generator
}

func (a *ShelfAdapter) Search(ctx context.Context, keywords []string, page int) ([]model.ResourceItem, error) {
	if len(keywords) == 0 {
		return nil, util.NewValidation("缺少搜索关键词")
	}
	page = normalizePage(page)
	query := joinQuery(keywords)

	var pool []model.ResourceItem
	for _, cat := range a.classifier.Classify(ctx, a.kind, query, a.prompt, a.categories) {
		pool = append(pool, a.shelves[cat]...)
	}

	start := (page - 1) * a.limit
	if start >= len(pool) {
		return a.generator.Generate(ctx, a.gen, query, page), nil
	}

	end := start + a.limit
	if end > len(pool) {
		end = len(pool)
	}
	items := make([]model.ResourceItem, end-start, a.limit)
	copy(items, pool[start:end])

	if missing := a.limit - len(items); missing > 0 {
		extra := a.generator.Generate(ctx, a.gen, query, page)
		if len(extra) > missing {
			extra = extra[:missing]
		}
		items = append(items, extra...)
	}
	return items, nil
}

func (a *ShelfAdapter) Categories() []string {
	return a.categories
}
