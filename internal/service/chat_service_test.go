package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
)

func TestChatReplaysRecentHistory(t *testing.T) {
	db := newTestDB(t)
	c := &fakeLLM{replies: map[string]string{"tutor": "好的"}}
	svc := NewChatService(repository.NewChatRepository(db), c)
	svc.now = fixedClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	for i := 0; i < 6; i++ {
		if _, err := svc.Send(context.Background(), 1, ChatInput{Message: fmt.Sprintf("第%d问", i)}); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	reply, err := svc.Send(context.Background(), 1, ChatInput{Message: "最后一问", Context: "GMP 模型笔记"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if reply.Role != model.TurnAssistant || reply.Message != "好的" {
		t.Errorf("reply = %+v", reply)
	}

	req, ok := c.last("tutor")
	if !ok {
		t.Fatal("tutor not called")
	}
	// 12 条历史中回放最近 10 条，再加本轮提问
	if len(req.Messages) != memoryWindow+1 {
		t.Fatalf("replayed %d messages, want %d", len(req.Messages), memoryWindow+1)
	}
	if req.Messages[0].Role != llm.RoleUser || req.Messages[0].Content != "第1问" {
		t.Errorf("oldest replayed = %+v, want 第1问", req.Messages[0])
	}
	if last := req.Messages[len(req.Messages)-1]; last.Content != "最后一问" {
		t.Errorf("current message = %+v", last)
	}
	if !strings.Contains(req.System, "职途伴侣") || !strings.Contains(req.System, "相关内容：\nGMP 模型笔记") {
		t.Errorf("system prompt = %q", req.System)
	}
	if req.Temperature != 0.7 {
		t.Errorf("temperature = %v", req.Temperature)
	}
}

func TestChatFailureSavesNothing(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repository.NewChatRepository(db), &fakeLLM{})

	_, err := svc.Send(context.Background(), 1, ChatInput{Message: "你好"})
	if !util.IsKind(err, util.KindUpstreamUnavailable) {
		t.Fatalf("err = %v, want upstream", err)
	}
	history, err := svc.History(1, 1, 50)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("saved %d messages after failure", len(history))
	}

	if _, err := svc.Send(context.Background(), 1, ChatInput{Message: "   "}); !util.IsKind(err, util.KindValidation) {
		t.Errorf("blank message err = %v", err)
	}
}

func TestChatEmptyReply(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repository.NewChatRepository(db), &fakeLLM{replies: map[string]string{"tutor": " \n"}})

	if _, err := svc.Send(context.Background(), 1, ChatInput{Message: "你好"}); err != util.ErrEmptyGeneration {
		t.Fatalf("err = %v", err)
	}
}

func TestChatHistoryAndClear(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repository.NewChatRepository(db), &fakeLLM{replies: map[string]string{"tutor": "答"}})

	for _, msg := range []string{"一", "二"} {
		if _, err := svc.Send(context.Background(), 1, ChatInput{Message: msg}); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	history, err := svc.History(1, 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	var got []string
	for _, m := range history {
		got = append(got, m.Role+":"+m.Message)
	}
	if strings.Join(got, ",") != "user:一,assistant:答,user:二,assistant:答" {
		t.Errorf("history = %v", got)
	}

	n, err := svc.Clear(1)
	if err != nil || n != 4 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	history, _ = svc.History(1, 1, 50)
	if len(history) != 0 {
		t.Errorf("history after clear = %d", len(history))
	}
}
