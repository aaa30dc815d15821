package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPath(t *testing.T, db *gorm.DB, userID uint, position, output string) *model.LearningPath {
	t.Helper()
	p := &model.LearningPath{UserID: userID, Position: position}
	p.GeneratedContent.Output = output
	p.GeneratedContent.MarkGenerated(model.ContentMindmap)
	if err := repository.NewLearningPathRepository(db).Create(p); err != nil {
		t.Fatalf("create path: %v", err)
	}
	return p
}

func seedQuestion(t *testing.T, db *gorm.DB, pathID uint, text, category string, points ...string) *model.InterviewQuestion {
	t.Helper()
	if points == nil {
		points = []string{}
	}
	q := model.InterviewQuestion{
		LearningPathID:  pathID,
		Question:        text,
		Answer:          "参考答案",
		Category:        category,
		Difficulty:      model.DifficultyMedium,
		KnowledgePoints: points,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return &q
}

func reloadPath(t *testing.T, db *gorm.DB, id uint) *model.LearningPath {
	t.Helper()
	var p model.LearningPath
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("reload path: %v", err)
	}
	return &p
}

// fakeLLM 按 Purpose 返回预设内容，未配置的 Purpose 返回错误
type fakeLLM struct {
	mu      sync.Mutex
	replies map[string]string
	calls   []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if out, ok := f.replies[req.Purpose]; ok {
		return out, nil
	}
	return "", errors.New("fake llm: unavailable")
}

func (f *fakeLLM) last(purpose string) (llm.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Purpose == purpose {
			return f.calls[i], true
		}
	}
	return llm.Request{}, false
}

type fakeNarrator struct {
	text  string
	err   error
	calls int
}

func (f *fakeNarrator) Narrate(_ context.Context, _ NarrativeRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

// fakeAdapter 记录每次请求的页码，items 为 nil 时按页码生成不重复的条目
type fakeAdapter struct {
	items []model.ResourceItem
	err   error
	pages []int
}

func (f *fakeAdapter) Search(_ context.Context, _ []string, page int) ([]model.ResourceItem, error) {
	f.pages = append(f.pages, page)
	if f.err != nil {
		return f.items, f.err
	}
	if f.items != nil {
		return f.items, nil
	}
	out := make([]model.ResourceItem, 3)
	for i := range out {
		out[i] = model.ResourceItem{
			Title: fmt.Sprintf("第%d页 条目%d", page, i),
			URL:   fmt.Sprintf("https://example.com/p%d/%d", page, i),
		}
	}
	return out, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
