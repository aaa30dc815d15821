package resource

import (
	"sort"
	"strconv"
	"strings"
	"zhitu_backend/internal/model"
)

type catalogEntry struct {
	model.ResourceItem
	Tags []string `json:"tags"`
}

// Catalog 内置资源库，按关键词相关度排序。
// 外部数据源出错时作为降级结果。
type Catalog struct {
	entries map[model.ContentType][]catalogEntry
}

var catalogLimits = map[model.ContentType]int{
	model.ContentCourses:        5,
	model.ContentBooks:          5,
	model.ContentCertifications: 3,
}

func NewCatalog() *Catalog {
	var raw map[string][]catalogEntry
	mustLoad("catalog.json", &raw)

	c := &Catalog{entries: make(map[model.ContentType][]catalogEntry, len(raw))}
	for k, v := range raw {
		c.entries[model.ContentType(k)] = v
	}
	return c
}

type scoredEntry struct {
	item      model.ResourceItem
	relevance float64
	rating    float64
}

// Match 标签命中 3 分，标题 2 分，描述 1 分，按关键词数归一化。
// 仅保留相关度大于 0 的条目，按相关度、评分降序。
func (c *Catalog) Match(t model.ContentType, keywords []string) []model.ResourceItem {
	if len(keywords) == 0 {
		return nil
	}

	var scored []scoredEntry
	for _, e := range c.entries[t] {
		r := relevance(e, keywords)
		if r <= 0 {
			continue
		}
		rating, _ := strconv.ParseFloat(e.Rating, 64)
		scored = append(scored, scoredEntry{item: e.ResourceItem, relevance: r, rating: rating})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].relevance != scored[j].relevance {
			return scored[i].relevance > scored[j].relevance
		}
		return scored[i].rating > scored[j].rating
	})

	limit := catalogLimits[t]
	if len(scored) > limit {
		scored = scored[:limit]
	}
	items := make([]model.ResourceItem, len(scored))
	for i, s := range scored {
		items[i] = s.item
	}
	return items
}

func relevance(e catalogEntry, keywords []string) float64 {
	title := strings.ToLower(e.Title)
	desc := strings.ToLower(e.Description)

	var score float64
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		switch {
		case hasTag(e.Tags, kw):
			score += 3
		case strings.Contains(title, kw):
			score += 2
		case strings.Contains(desc, kw):
			score += 1
		}
	}
	return score / float64(len(keywords)*3)
}

func hasTag(tags []string, kw string) bool {
	for _, t := range tags {
		if strings.ToLower(t) == kw {
			return true
		}
	}
	return false
}
