package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"

	"gorm.io/gorm"
)

func newInterviewService(t *testing.T, db *gorm.DB, c *fakeLLM) *InterviewService {
	t.Helper()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()})
	return NewInterviewService(
		repository.NewLearningPathRepository(db),
		repository.NewInterviewQuestionRepository(db),
		repository.NewQuestionStatusRepository(db),
		storage,
		c,
	)
}

const threeQuestions = "好的，以下是题目：\n```json\n" + `{"questions":[
 {"question":"什么是 goroutine？","answer":"轻量级线程","category":"技术基础","difficulty":"Easy","knowledge_points":["并发"]},
 {"question":"channel 的关闭语义？","answer":"...","category":"技术基础","difficulty":"expert","knowledge_points":["并发","channel"]},
 {"question":"介绍一个项目","answer":"...","category":"项目经验","difficulty":"hard"}
]}` + "\n```"

func TestGenerateQuestions(t *testing.T) {
	db := newTestDB(t)
	c := &fakeLLM{replies: map[string]string{"interview_questions": threeQuestions}}
	svc := newInterviewService(t, db, c)
	path := seedPath(t, db, 1, "Go后端", "# 路线")

	qs, err := svc.GenerateQuestions(context.Background(), 1, GenerateQuestionsInput{LearningPathID: path.ID, Count: 2, Category: "技术基础"})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("saved %d questions, want 2", len(qs))
	}
	if qs[0].Difficulty != model.DifficultyEasy || qs[1].Difficulty != model.DifficultyMedium {
		t.Errorf("difficulties = %s, %s", qs[0].Difficulty, qs[1].Difficulty)
	}
	if qs[0].ID == 0 {
		t.Error("ids not assigned")
	}

	req, _ := c.last("interview_questions")
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "2道面试题") || !strings.Contains(prompt, "【技术基础】") {
		t.Errorf("prompt = %s", prompt)
	}
	if !req.JSON {
		t.Error("question generation should request json output")
	}
}

func TestGenerateQuestionsFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply map[string]string
		count int
		kind  util.ErrorKind
	}{
		{"count too large", nil, 101, util.KindValidation},
		{"negative count", nil, -1, util.KindValidation},
		{"llm down", nil, 5, util.KindUpstreamUnavailable},
		{"not json", map[string]string{"interview_questions": "抱歉"}, 5, util.KindMalformedUpstream},
		{"no usable question", map[string]string{"interview_questions": `{"questions":[{"question":"  "}]}`}, 5, util.KindMalformedUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := newInterviewService(t, db, &fakeLLM{replies: tt.reply})
			path := seedPath(t, db, 1, "Go后端", "# 路线")

			_, err := svc.GenerateQuestions(context.Background(), 1, GenerateQuestionsInput{LearningPathID: path.ID, Count: tt.count})
			if !util.IsKind(err, tt.kind) {
				t.Fatalf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestUpdateStatusCountsEveryReview(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, &fakeLLM{})
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	q := seedQuestion(t, db, path.ID, "什么是 goroutine？", "技术基础")

	st, err := svc.UpdateStatus(1, q.ID, "mastered")
	if err != nil {
		t.Fatalf("first update: %v", err)
	}
	if st.ReviewCount != 1 || st.Status != model.StatusMastered {
		t.Fatalf("first = %+v", st)
	}
	st, err = svc.UpdateStatus(1, q.ID, "not_mastered")
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if st.ReviewCount != 2 || st.Status != model.StatusNotMastered {
		t.Fatalf("second = %+v", st)
	}
	st, _ = svc.UpdateStatus(1, q.ID, "not_mastered")
	if st.ReviewCount != 3 {
		t.Errorf("same status again: review_count = %d, want 3", st.ReviewCount)
	}
}

func TestUpdateStatusRejects(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, &fakeLLM{})
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	q := seedQuestion(t, db, path.ID, "什么是 goroutine？", "技术基础")

	if _, err := svc.UpdateStatus(1, q.ID, "forgotten"); !util.IsKind(err, util.KindValidation) {
		t.Errorf("invalid status: %v", err)
	}
	if _, err := svc.UpdateStatus(2, q.ID, "mastered"); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("other user: %v", err)
	}
	if _, err := svc.UpdateStatus(1, 999, "mastered"); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Errorf("missing question: %v", err)
	}
}

func TestStatisticsAndList(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, &fakeLLM{})
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	q1 := seedQuestion(t, db, path.ID, "Q1", "技术基础", "并发", "调度")
	q2 := seedQuestion(t, db, path.ID, "Q2", "技术基础", "并发")
	q3 := seedQuestion(t, db, path.ID, "Q3", "系统架构", "缓存")
	seedQuestion(t, db, path.ID, "Q4", "行为面试")

	for id, st := range map[uint]string{q1.ID: "not_mastered", q2.ID: "not_mastered", q3.ID: "mastered"} {
		if _, err := svc.UpdateStatus(1, id, st); err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
	}

	stats, err := svc.Statistics(1, path.ID)
	if err != nil {
		t.Fatalf("Statistics: %v", err)
	}
	if stats.Total != 4 || stats.NotSeen != 1 || stats.Mastered != 1 || stats.NotMastered != 2 {
		t.Errorf("counts = %+v", stats)
	}
	if stats.MasteryRate != 33.3 {
		t.Errorf("mastery_rate = %v, want 33.3", stats.MasteryRate)
	}
	if len(stats.WeakCategories) != 1 || stats.WeakCategories[0] != (WeakCategory{"技术基础", 2}) {
		t.Errorf("weak categories = %+v", stats.WeakCategories)
	}
	if len(stats.WeakKnowledgePoints) != 2 || stats.WeakKnowledgePoints[0] != (WeakPoint{"并发", 2}) {
		t.Errorf("weak points = %+v", stats.WeakKnowledgePoints)
	}

	list, err := svc.ListQuestions(1, path.ID, "not_seen")
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if list.Total != 1 || list.Questions[0].Question != "Q4" || list.Statistics.Total != 4 {
		t.Errorf("list = %+v", list)
	}
	if _, err := svc.ListQuestions(1, path.ID, "bogus"); !util.IsKind(err, util.KindValidation) {
		t.Errorf("bogus status: %v", err)
	}
}

func TestGenerateWeakPointQuestions(t *testing.T) {
	db := newTestDB(t)
	c := &fakeLLM{replies: map[string]string{"interview_questions": threeQuestions}}
	svc := newInterviewService(t, db, c)
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	q := seedQuestion(t, db, path.ID, "Q1", "技术基础", "并发", "调度")

	if _, err := svc.GenerateWeakPointQuestions(context.Background(), 1, path.ID, 5); !util.IsKind(err, util.KindValidation) {
		t.Fatalf("without mistakes: %v", err)
	}

	if _, err := svc.UpdateStatus(1, q.ID, "not_mastered"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	qs, err := svc.GenerateWeakPointQuestions(context.Background(), 1, path.ID, 0)
	if err != nil {
		t.Fatalf("GenerateWeakPointQuestions: %v", err)
	}
	if len(qs) != 3 {
		t.Errorf("saved %d questions, want 3", len(qs))
	}
	req, _ := c.last("interview_questions")
	if !strings.Contains(req.Messages[0].Content, "并发、调度") {
		t.Errorf("prompt missing weak points: %s", req.Messages[0].Content)
	}
}

func TestExportMistakes(t *testing.T) {
	db := newTestDB(t)
	svc := newInterviewService(t, db, &fakeLLM{})
	root := svc.Storage.Provider.(*LocalStorageProvider).Config.LocalPath
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	q := seedQuestion(t, db, path.ID, "channel 的关闭语义？", "技术基础", "并发", "channel")

	if _, err := svc.ExportMistakes(context.Background(), 1, 0); !util.IsKind(err, util.KindValidation) {
		t.Fatalf("empty export: %v", err)
	}
	if _, err := svc.UpdateStatus(1, q.ID, "not_mastered"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	res, err := svc.ExportMistakes(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("ExportMistakes: %v", err)
	}
	if res.Count != 1 || !strings.HasPrefix(res.URL, "/uploads/exports/mistakes/1/") {
		t.Errorf("result = %+v", res)
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(res.Key)))
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	content := string(data)
	for _, want := range []string{"职位,题目", "Go后端", "channel 的关闭语义？", "并发、channel"} {
		if !strings.Contains(content, want) {
			t.Errorf("csv missing %q:\n%s", want, content)
		}
	}
}
