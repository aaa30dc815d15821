package resource

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxKeywords  = 5
	maxBoldSpans = 10
	maxTechTerms = 5
)

var (
	boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)

	// RE2 的 \b 只识别 ASCII，中文词单独按子串匹配
	techPattern = regexp.MustCompile(`(?i)\b(Java|Python|JavaScript|React|Vue|Angular|Node\.js|Spring|Django|Flask|MySQL|PostgreSQL|MongoDB|Redis|Docker|Kubernetes|AWS|Azure|Git|Linux|HTTP|TCP|SQL|NoSQL|RESTful|GraphQL)\b`)
	cjkTerms    = []string{"微服务", "前端", "后端", "全栈"}
)

// ExtractKeywords 从职位名称和已生成的 Markdown 中提取搜索关键词。
// 结果最多 5 个，按首次出现顺序，忽略大小写去重。
func ExtractKeywords(position, markdown string) []string {
	candidates := []string{position}

	if markdown != "" {
		for i, m := range boldPattern.FindAllStringSubmatch(markdown, -1) {
			if i >= maxBoldSpans {
				break
			}
			candidates = append(candidates, m[1])
		}
		candidates = append(candidates, techTerms(markdown)...)
	}

	return dedupeFold(candidates, maxKeywords)
}

type termHit struct {
	pos  int
	term string
}

func techTerms(text string) []string {
	var hits []termHit
	for _, loc := range techPattern.FindAllStringIndex(text, -1) {
		hits = append(hits, termHit{pos: loc[0], term: text[loc[0]:loc[1]]})
	}
	for _, term := range cjkTerms {
		if idx := strings.Index(text, term); idx != -1 {
			hits = append(hits, termHit{pos: idx, term: term})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	terms := make([]string, 0, len(hits))
	for _, h := range hits {
		terms = append(terms, h.term)
	}
	return dedupeFold(terms, maxTechTerms)
}

func dedupeFold(in []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}
