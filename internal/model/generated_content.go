package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// ResourceItem 课程/书籍/证书条目，url 为去重键
type ResourceItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	Rating      string `json:"rating,omitempty"`
	Level       string `json:"level,omitempty"`
	Validity    string `json:"validity,omitempty"`
	Description string `json:"description,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Cover       string `json:"cover,omitempty"`
	Views       string `json:"views,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

type ContentMetadata struct {
	Position  string `json:"position,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// GeneratedContent 学习路线的内容缓存。
// 已知字段强类型存储，未知键原样保存在 Extra 中。
// 修改后必须由仓储层显式保存。
type GeneratedContent struct {
	Output         string
	GeneratedTypes []string
	Metadata       *ContentMetadata

	Knowledge     string
	InterviewTips string

	Courses        []ResourceItem
	Books          []ResourceItem
	Certifications []ResourceItem

	CoursesCursor        int
	BooksCursor          int
	CertificationsCursor int

	Extra map[string]json.RawMessage
}

const legacyInterviewKey = "interview"

func cursorKey(t ContentType) string {
	return string(t) + "_generation_count"
}

func (g GeneratedContent) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(g.Extra)+12)
	for k, v := range g.Extra {
		out[k] = v
	}

	types := g.GeneratedTypes
	if types == nil {
		types = []string{}
	}
	out["output"] = g.Output
	out["generated_types"] = types
	if g.Metadata != nil {
		out["metadata"] = g.Metadata
	}
	if g.Knowledge != "" {
		out[string(ContentKnowledge)] = g.Knowledge
	}
	if g.InterviewTips != "" {
		out[string(ContentInterviewTips)] = g.InterviewTips
	}

	for _, t := range ResourceTypes() {
		items, cursor := g.resourceSlot(t)
		if *items != nil {
			out[string(t)] = *items
		}
		if *cursor > 0 {
			out[cursorKey(t)] = *cursor
		}
	}
	return json.Marshal(out)
}

func (g *GeneratedContent) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = GeneratedContent{}

	take := func(key string, dst interface{}) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		delete(raw, key)
		if string(v) == "null" {
			return nil
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("generated_content.%s: %w", key, err)
		}
		return nil
	}

	if err := take("output", &g.Output); err != nil {
		return err
	}
	if err := take("generated_types", &g.GeneratedTypes); err != nil {
		return err
	}
	if err := take("metadata", &g.Metadata); err != nil {
		return err
	}
	if err := take(string(ContentKnowledge), &g.Knowledge); err != nil {
		return err
	}
	if err := take(string(ContentInterviewTips), &g.InterviewTips); err != nil {
		return err
	}
	if g.InterviewTips == "" {
		if err := take(legacyInterviewKey, &g.InterviewTips); err != nil {
			return err
		}
	}
	for _, t := range ResourceTypes() {
		items, cursor := g.resourceSlot(t)
		if err := take(string(t), items); err != nil {
			return err
		}
		if err := take(cursorKey(t), cursor); err != nil {
			return err
		}
	}

	// 旧标签 interview 与 interview-tips 可能并存，重建时去重
	types := g.GeneratedTypes
	g.GeneratedTypes = nil
	for _, typ := range types {
		if typ == legacyInterviewKey {
			typ = string(ContentInterviewTips)
		}
		g.MarkGenerated(ContentType(typ))
	}

	if len(raw) > 0 {
		g.Extra = raw
	}
	return nil
}

func (g *GeneratedContent) resourceSlot(t ContentType) (*[]ResourceItem, *int) {
	switch t {
	case ContentCourses:
		return &g.Courses, &g.CoursesCursor
	case ContentBooks:
		return &g.Books, &g.BooksCursor
	case ContentCertifications:
		return &g.Certifications, &g.CertificationsCursor
	}
	panic(fmt.Sprintf("model: %q is not a resource content type", t))
}

func (g *GeneratedContent) Resources(t ContentType) []ResourceItem {
	items, _ := g.resourceSlot(t)
	return *items
}

// Cursor 已成功合并的页数，下一次请求 page = Cursor+1
func (g *GeneratedContent) Cursor(t ContentType) int {
	_, cursor := g.resourceSlot(t)
	return *cursor
}

// AdvanceCursor 游标只前进不后退
func (g *GeneratedContent) AdvanceCursor(t ContentType, page int) {
	_, cursor := g.resourceSlot(t)
	if page > *cursor {
		*cursor = page
	}
}

// MergeResources 按 url 去重追加，返回实际新增的条目。
// url 为空的条目总是追加。
func (g *GeneratedContent) MergeResources(t ContentType, incoming []ResourceItem) []ResourceItem {
	items, _ := g.resourceSlot(t)

	seen := make(map[string]struct{}, len(*items)+len(incoming))
	for _, it := range *items {
		if it.URL != "" {
			seen[it.URL] = struct{}{}
		}
	}

	var added []ResourceItem
	for _, it := range incoming {
		if it.URL != "" {
			if _, dup := seen[it.URL]; dup {
				continue
			}
			seen[it.URL] = struct{}{}
		}
		added = append(added, it)
	}

	if len(added) > 0 {
		*items = append(*items, added...)
	}
	return added
}

func (g *GeneratedContent) HasGenerated(t ContentType) bool {
	for _, typ := range g.GeneratedTypes {
		if typ == string(t) {
			return true
		}
	}
	return false
}

// MarkGenerated generated_types 只增不减
func (g *GeneratedContent) MarkGenerated(t ContentType) {
	if !g.HasGenerated(t) {
		g.GeneratedTypes = append(g.GeneratedTypes, string(t))
	}
}

func (g *GeneratedContent) Narrative(t ContentType) string {
	switch t {
	case ContentMindmap:
		return g.Output
	case ContentKnowledge:
		return g.Knowledge
	case ContentInterviewTips:
		return g.InterviewTips
	}
	return ""
}

func (g *GeneratedContent) SetNarrative(t ContentType, text string) {
	switch t {
	case ContentMindmap:
		g.Output = text
	case ContentKnowledge:
		g.Knowledge = text
	case ContentInterviewTips:
		g.InterviewTips = text
	default:
		panic(fmt.Sprintf("model: %q is not a narrative content type", t))
	}
}

func (GeneratedContent) GormDataType() string {
	return "json"
}

func (GeneratedContent) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql":
		return "JSON"
	}
	return "JSON"
}

func (g GeneratedContent) Value() (driver.Value, error) {
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (g *GeneratedContent) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*g = GeneratedContent{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("model: cannot scan %T into GeneratedContent", value)
	}
	if len(data) == 0 {
		*g = GeneratedContent{}
		return nil
	}
	return json.Unmarshal(data, g)
}
