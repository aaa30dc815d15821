package resource

import (
	"fmt"
	"zhitu_backend/internal/model"
)

var (
	bookCategories = []string{"ai", "nlp", "计算机视觉", "强化学习", "java", "python", "javascript", "react", "算法"}

	bookStrategies = []string{
		"推荐5本经典必读书籍",
		"推荐5本适合入门的书籍",
		"推荐5本进阶和深度学习的书籍",
		"推荐5本实战项目类书籍",
		"推荐5本最新出版的书籍（2020年后）",
		"推荐3本中文书籍和2本英文原版书籍",
	}

	bookShelves map[string][]model.ResourceItem
)

func init() {
	mustLoad("books.json", &bookShelves)
}

func bookSearchURL(query string) string {
	return "https://search.douban.com/book/subject_search?search_text=" + escape(query)
}

var bookGeneration = generationSpec{
	kind:        string(model.ContentBooks),
	listKey:     "books",
	system:      "你是一个技术图书推荐专家。只返回JSON格式，不要有其他内容。",
	strategies:  bookStrategies,
	temperature: 0.8,
	maxTokens:   2000,
	prompt: func(query, strategy string) string {
		return fmt.Sprintf(`请为"%s"相关的职位/技能%s。

要求：
1. 推荐真实存在的、高质量的技术书籍
2. 包含理论、实战、工具书等不同类型
3. 避免重复常见书籍
4. 返回JSON格式：
{"books": [{"title": "书名（含版本号）", "author": "作者", "publisher": "出版社", "rating": "评分（如9.1）", "description": "一句话简介（20字以内）", "url": "豆瓣或购买链接"}]}`, query, strategy)
	},
	standardize: func(query string, it generatedItem) model.ResourceItem {
		return model.ResourceItem{
			Title:       orDefault(it.Title, "未知书名"),
			Author:      orDefault(it.Author, "多位作者"),
			Publisher:   orDefault(it.Publisher, "各大出版社"),
			Rating:      orDefault(it.Rating, "待评分"),
			Description: it.Description.String(),
			URL:         orDefault(it.URL, bookSearchURL(query)),
		}
	},
	pointer: func(query string) model.ResourceItem {
		return model.ResourceItem{
			Title:       query + "相关技术书籍",
			URL:         bookSearchURL(query),
			Author:      "多位作者",
			Publisher:   "各大出版社",
			Rating:      "待评分",
			Description: fmt.Sprintf("点击搜索 %q 相关技术书籍", query),
		}
	},
}

// NewBookAdapter 每页 5 本
func NewBookAdapter(classifier *Classifier, generator *Generator) *ShelfAdapter {
	return &ShelfAdapter{
		kind:       string(model.ContentBooks),
		limit:      5,
		categories: bookCategories,
		shelves:    bookShelves,
		prompt: classifyPrompt{
			role:    "职业技能分析专家",
			subject: "书籍",
			want:    "3-5",
			examples: []string{
				`"AI工程师" → {"categories": ["ai", "python", "nlp", "计算机视觉"]}`,
				`"前端工程师" → {"categories": ["javascript", "react"]}`,
				`"Java后端工程师" → {"categories": ["java", "算法"]}`,
			},
		},
		gen:        bookGeneration,
		classifier: classifier,
		generator:  generator,
	}
}
