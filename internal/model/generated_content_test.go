package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGeneratedContentKeepsUnknownKeys(t *testing.T) {
	raw := `{
		"output": "# 路线",
		"generated_types": ["mindmap", "books"],
		"metadata": {"position": "Go 开发", "timestamp": "2024-05-01T10:00:00"},
		"books": [{"title": "Go 程序设计语言", "url": "https://book.douban.com/subject/27044219/"}],
		"books_generation_count": 2,
		"videos": [{"title": "x"}],
		"videos_generation_count": 4
	}`

	var g GeneratedContent
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if g.Output != "# 路线" || g.BooksCursor != 2 || len(g.Books) != 1 {
		t.Fatalf("known fields not decoded: %+v", g)
	}
	if g.Metadata == nil || g.Metadata.Position != "Go 开发" {
		t.Fatalf("metadata = %+v", g.Metadata)
	}
	if len(g.Extra) != 2 {
		t.Fatalf("Extra = %v, want videos and videos_generation_count", g.Extra)
	}

	out, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	for _, key := range []string{"videos", "videos_generation_count", "books_generation_count", "metadata"} {
		if _, ok := back[key]; !ok {
			t.Errorf("key %q lost after round trip: %s", key, out)
		}
	}
	if _, ok := back["courses"]; ok {
		t.Errorf("absent resource list should not be emitted: %s", out)
	}
}

func TestGeneratedContentLegacyInterviewKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"legacy tag only", `{"generated_types":["interview"],"interview":"## 面试技巧"}`, []string{"interview-tips"}},
		{"legacy and new tag", `{"generated_types":["mindmap","interview","interview-tips"],"interview-tips":"## 面试技巧"}`, []string{"mindmap", "interview-tips"}},
		{"duplicated tags", `{"generated_types":["books","books","interview"],"interview":"## 面试技巧"}`, []string{"books", "interview-tips"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g GeneratedContent
			if err := json.Unmarshal([]byte(tt.raw), &g); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if strings.Join(g.GeneratedTypes, ",") != strings.Join(tt.want, ",") {
				t.Errorf("types = %v, want %v", g.GeneratedTypes, tt.want)
			}
			if g.Narrative(ContentInterviewTips) != "## 面试技巧" {
				t.Errorf("narrative = %q", g.Narrative(ContentInterviewTips))
			}
		})
	}
}

func TestMergeResourcesDedupByURL(t *testing.T) {
	var g GeneratedContent
	first := []ResourceItem{
		{Title: "a", URL: "https://x/a"},
		{Title: "b", URL: "https://x/b"},
		{Title: "a again", URL: "https://x/a"},
	}
	added := g.MergeResources(ContentCourses, first)
	if len(added) != 2 {
		t.Fatalf("added = %d, want 2 (duplicate within batch dropped)", len(added))
	}

	second := []ResourceItem{
		{Title: "b", URL: "https://x/b"},
		{Title: "c", URL: "https://x/c"},
		{Title: "pointer 1"},
		{Title: "pointer 2"},
	}
	added = g.MergeResources(ContentCourses, second)
	if len(added) != 3 {
		t.Fatalf("added = %d, want 3 (c plus two empty-url items)", len(added))
	}

	seen := map[string]bool{}
	for _, it := range g.Resources(ContentCourses) {
		if it.URL == "" {
			continue
		}
		if seen[it.URL] {
			t.Fatalf("duplicate url %q in stored list", it.URL)
		}
		seen[it.URL] = true
	}
	if got := len(g.Resources(ContentCourses)); got != 5 {
		t.Errorf("stored = %d, want 5", got)
	}
	if len(g.Resources(ContentBooks)) != 0 {
		t.Errorf("books touched by courses merge")
	}
}

func TestCursorOnlyMovesForward(t *testing.T) {
	var g GeneratedContent
	g.AdvanceCursor(ContentBooks, 1)
	g.AdvanceCursor(ContentBooks, 3)
	g.AdvanceCursor(ContentBooks, 2)
	if g.Cursor(ContentBooks) != 3 {
		t.Errorf("cursor = %d, want 3", g.Cursor(ContentBooks))
	}
	if g.Cursor(ContentCertifications) != 0 {
		t.Errorf("certifications cursor = %d", g.Cursor(ContentCertifications))
	}
}

func TestMarkGeneratedIsSet(t *testing.T) {
	var g GeneratedContent
	g.MarkGenerated(ContentKnowledge)
	g.MarkGenerated(ContentKnowledge)
	g.MarkGenerated(ContentBooks)
	if strings.Join(g.GeneratedTypes, ",") != "knowledge,books" {
		t.Errorf("generated_types = %v", g.GeneratedTypes)
	}
}

func TestGeneratedContentScan(t *testing.T) {
	var g GeneratedContent
	if err := g.Scan([]byte(`{"output":"x","generated_types":["mindmap"]}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if g.Output != "x" {
		t.Errorf("output = %q", g.Output)
	}
	if err := g.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if g.Output != "" || g.GeneratedTypes != nil {
		t.Errorf("scan nil should reset, got %+v", g)
	}
	if err := g.Scan(42); err == nil {
		t.Error("scan int should fail")
	}

	v, err := GeneratedContent{Output: "y"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if !strings.Contains(v.(string), `"generated_types":[]`) {
		t.Errorf("empty generated_types should encode as [], got %s", v)
	}
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
		ok   bool
	}{
		{"books", ContentBooks, true},
		{" Courses ", ContentCourses, true},
		{"interview", ContentInterviewTips, true},
		{"interview-tips", ContentInterviewTips, true},
		{"mindmap", ContentMindmap, true},
		{"videos", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseContentType(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseContentType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"Easy": DifficultyEasy, "HARD": DifficultyHard, "": DifficultyMedium, "expert": DifficultyMedium} {
		if got := NormalizeDifficulty(in); got != want {
			t.Errorf("NormalizeDifficulty(%q) = %q, want %q", in, got, want)
		}
	}
}
