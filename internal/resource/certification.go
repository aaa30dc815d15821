package resource

import (
	"fmt"
	"zhitu_backend/internal/model"
)

var (
	certificationCategories = []string{"ai", "java", "python", "aws", "数据库", "项目管理"}

	certificationStrategies = []string{
		"推荐3个权威的职业认证证书",
		"推荐3个适合初级从业者的职业认证证书",
		"推荐3个专家级或架构师级别的职业认证证书",
		"推荐3个云厂商相关的职业认证证书",
		"推荐2个国际认证和1个国内认证",
	}

	certificationShelves map[string][]model.ResourceItem
)

func init() {
	mustLoad("certifications.json", &certificationShelves)
}

func certificationSearchURL(query string) string {
	return "https://www.google.com/search?q=" + escape(query+" 职业认证 证书")
}

var certificationGeneration = generationSpec{
	kind:        string(model.ContentCertifications),
	listKey:     "certifications",
	system:      "你是一个职业认证专家。只返回JSON格式，不要有其他内容。",
	strategies:  certificationStrategies,
	temperature: 0.7,
	maxTokens:   1500,
	prompt: func(query, strategy string) string {
		return fmt.Sprintf(`请为"%s"相关的职位/技能%s。

要求：
1. 推荐真实存在的、权威的职业认证
2. 包含国际认证和国内认证
3. 返回JSON格式：
{"certifications": [{"title": "证书全称", "issuer": "颁发机构", "description": "一句话简介（20字以内）", "level": "级别（如：专业级、助理级）", "validity": "有效期（如：3年、永久有效）", "url": "官方链接"}]}`, query, strategy)
	},
	standardize: func(query string, it generatedItem) model.ResourceItem {
		return model.ResourceItem{
			Title:       orDefault(it.Title, "未知证书"),
			Issuer:      orDefault(it.Issuer, "各认证机构"),
			Description: it.Description.String(),
			Level:       orDefault(it.Level, "各级别"),
			Validity:    orDefault(it.Validity, "查看详情"),
			URL:         orDefault(it.URL, certificationSearchURL(query)),
		}
	},
	pointer: func(query string) model.ResourceItem {
		return model.ResourceItem{
			Title:       query + "相关职业认证",
			URL:         certificationSearchURL(query),
			Issuer:      "各认证机构",
			Description: fmt.Sprintf("搜索 %q 相关的职业认证证书", query),
			Level:       "各级别",
			Validity:    "查看详情",
		}
	},
}

// NewCertificationAdapter 每页 3 个
func NewCertificationAdapter(classifier *Classifier, generator *Generator) *ShelfAdapter {
	return &ShelfAdapter{
		kind:       string(model.ContentCertifications),
		limit:      3,
		categories: certificationCategories,
		shelves:    certificationShelves,
		prompt: classifyPrompt{
			role:    "职业认证分析专家",
			subject: "职业认证证书",
			want:    "2-3",
			examples: []string{
				`"AI工程师" → {"categories": ["ai", "python", "aws"]}`,
				`"Java工程师" → {"categories": ["java", "数据库"]}`,
				`"项目经理" → {"categories": ["项目管理"]}`,
			},
		},
		gen:        certificationGeneration,
		classifier: classifier,
		generator:  generator,
	}
}
