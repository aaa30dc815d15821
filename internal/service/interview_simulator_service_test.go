package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"

	"gorm.io/gorm"
)

func newSimulator(db *gorm.DB, c *fakeLLM, start time.Time) *InterviewSimulatorService {
	svc := NewInterviewSimulatorService(
		repository.NewLearningPathRepository(db),
		repository.NewInterviewQuestionRepository(db),
		repository.NewInterviewSessionRepository(db),
		c,
	)
	svc.now = fixedClock(start)
	svc.pick = func(int) int { return 0 }
	return svc
}

const longAnswer = "goroutine 是由 Go 运行时调度的轻量级线程，初始栈很小，可以按需增长，调度器采用 GMP 模型把大量 goroutine 复用到少量系统线程上。"

func TestStartSessionSeedsConversation(t *testing.T) {
	db := newTestDB(t)
	path := seedPath(t, db, 7, "Go后端", "# 路线")
	q := seedQuestion(t, db, path.ID, "请介绍一下 GMP 调度模型。", "技术基础")
	svc := newSimulator(db, &fakeLLM{}, time.Now())

	res, err := svc.Start(context.Background(), 7, path.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var s model.InterviewSession
	if err := db.First(&s, res.SessionID).Error; err != nil {
		t.Fatalf("load session: %v", err)
	}
	if len(s.Conversation) != 2 {
		t.Fatalf("conversation has %d turns, want 2", len(s.Conversation))
	}
	if s.Conversation[0].Role != model.TurnSystem || s.Conversation[1].Role != model.TurnAssistant {
		t.Errorf("roles = %s, %s", s.Conversation[0].Role, s.Conversation[1].Role)
	}
	if !strings.Contains(s.Conversation[1].Content, q.Question) {
		t.Errorf("assistant turn %q does not contain the seed question", s.Conversation[1].Content)
	}
	if !strings.Contains(s.Conversation[0].Content, "Go后端面试官") {
		t.Errorf("system prompt not parameterised by position")
	}
	if s.Status != model.SessionInProgress {
		t.Errorf("status = %s", s.Status)
	}
}

func TestStartSessionNotFound(t *testing.T) {
	db := newTestDB(t)
	path := seedPath(t, db, 7, "Go后端", "# 路线")
	svc := newSimulator(db, &fakeLLM{}, time.Now())

	if _, err := svc.Start(context.Background(), 7, path.ID); !errors.Is(err, util.ErrEmptyQuestionBank) {
		t.Errorf("empty bank: %v", err)
	}
	seedQuestion(t, db, path.ID, "Q", "基础")
	if _, err := svc.Start(context.Background(), 8, path.ID); !errors.Is(err, util.ErrLearningPathNotFound) {
		t.Errorf("other user: %v", err)
	}
}

func TestContinueAppendsTurns(t *testing.T) {
	db := newTestDB(t)
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	seedQuestion(t, db, path.ID, "请介绍 goroutine。", "技术基础")
	c := &fakeLLM{replies: map[string]string{"interviewer": "能详细说说调度器如何处理阻塞的系统调用吗？"}}
	svc := newSimulator(db, c, time.Now())

	start, err := svc.Start(context.Background(), 1, path.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var res *ContinueResult
	for i := 0; i < 7; i++ {
		res, err = svc.Continue(context.Background(), 1, start.SessionID, longAnswer)
		if err != nil {
			t.Fatalf("Continue %d: %v", i, err)
		}
	}
	if res.QuestionCount != 7 || res.QualityHint != HintGood {
		t.Errorf("result = %+v", res)
	}

	req, _ := c.last("interviewer")
	if len(req.Messages) != memoryWindow {
		t.Errorf("replayed %d turns, want %d", len(req.Messages), memoryWindow)
	}
	if req.Messages[len(req.Messages)-1].Content != longAnswer {
		t.Error("latest answer should be the last replayed turn")
	}
	if !strings.Contains(req.System, "面试官") {
		t.Error("system prompt not sent")
	}

	var s model.InterviewSession
	db.First(&s, start.SessionID)
	if len(s.Conversation) != 2+7*2 {
		t.Errorf("conversation has %d turns, want 16", len(s.Conversation))
	}
}

func TestContinueFallsBackWhenLLMFails(t *testing.T) {
	db := newTestDB(t)
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	seedQuestion(t, db, path.ID, "请介绍 goroutine。", "技术基础")
	svc := newSimulator(db, &fakeLLM{}, time.Now())

	start, _ := svc.Start(context.Background(), 1, path.ID)
	res, err := svc.Continue(context.Background(), 1, start.SessionID, "不太清楚")
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if res.InterviewerMessage == "" || res.QualityHint != HintNeedsImprovement {
		t.Errorf("result = %+v", res)
	}
	if _, err := svc.Continue(context.Background(), 1, start.SessionID, "  "); !util.IsKind(err, util.KindValidation) {
		t.Errorf("blank answer: %v", err)
	}
}

func TestEndSessionEvaluatesOnce(t *testing.T) {
	db := newTestDB(t)
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	seedQuestion(t, db, path.ID, "请介绍 goroutine。", "技术基础")
	c := &fakeLLM{replies: map[string]string{
		"interviewer": "好的，下一题。",
		"evaluation":  "```json\n{\"overall_score\":88,\"dimension_scores\":{\"technical_depth\":90,\"expression\":85,\"problem_solving\":86,\"experience\":80},\"strengths\":[\"原理清晰\"],\"weaknesses\":[],\"suggestions\":[],\"summary\":\"不错\"}\n```",
	}}
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newSimulator(db, c, t0)

	start, _ := svc.Start(context.Background(), 1, path.ID)
	if _, err := svc.Continue(context.Background(), 1, start.SessionID, longAnswer); err != nil {
		t.Fatalf("Continue: %v", err)
	}

	svc.now = fixedClock(t0.Add(5*time.Minute + 30*time.Second))
	end, err := svc.End(context.Background(), 1, start.SessionID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if end.Evaluation.OverallScore != 88 || end.DurationMinutes != 5 {
		t.Errorf("end = %+v", end)
	}
	evalReq, _ := c.last("evaluation")
	if !strings.Contains(evalReq.Messages[0].Content, "候选人："+longAnswer) {
		t.Error("transcript not included in evaluation prompt")
	}

	c.replies["evaluation"] = `{"overall_score":10}`
	again, err := svc.End(context.Background(), 1, start.SessionID)
	if err != nil {
		t.Fatalf("second End: %v", err)
	}
	if again.Evaluation.OverallScore != 88 {
		t.Errorf("evaluation overwritten: %+v", again.Evaluation)
	}

	if _, err := svc.Continue(context.Background(), 1, start.SessionID, longAnswer); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("continue after end: %v", err)
	}

	history, err := svc.History(1, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Score == nil || *history[0].Score != 88 {
		t.Errorf("history = %+v", history)
	}
}

func TestEndSessionDefaultEvaluation(t *testing.T) {
	db := newTestDB(t)
	path := seedPath(t, db, 1, "Go后端", "# 路线")
	seedQuestion(t, db, path.ID, "请介绍 goroutine。", "技术基础")
	c := &fakeLLM{replies: map[string]string{"evaluation": "我无法评价"}}
	svc := newSimulator(db, c, time.Now())

	start, _ := svc.Start(context.Background(), 1, path.ID)
	end, err := svc.End(context.Background(), 1, start.SessionID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if end.Evaluation.OverallScore != model.DefaultEvaluation().OverallScore {
		t.Errorf("evaluation = %+v, want default", end.Evaluation)
	}

	detail, err := svc.Detail(1, start.SessionID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Status != model.SessionCompleted || detail.Evaluation == nil {
		t.Errorf("detail = %+v", detail)
	}
	if _, err := svc.End(context.Background(), 2, start.SessionID); !errors.Is(err, util.ErrSessionNotFound) {
		t.Errorf("other user end: %v", err)
	}
}

func TestQualityHint(t *testing.T) {
	tests := []struct {
		answer, next, want string
	}{
		{"不知道", "为什么？", HintNeedsImprovement},
		{longAnswer, "能具体举个例子吗？", HintGood},
		{longAnswer, "很好，我们进入下一题：讲讲 channel。", HintExcellent},
	}
	for _, tt := range tests {
		if got := QualityHint(tt.answer, tt.next); got != tt.want {
			t.Errorf("QualityHint(%q, %q) = %s, want %s", tt.answer, tt.next, got, tt.want)
		}
	}
}
