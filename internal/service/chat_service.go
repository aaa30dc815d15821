package service

import (
	"context"
	"strings"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/logger"

	"go.uber.org/zap"
)

const defaultChatPage = 50

const tutorSystemPrompt = `你是「职途伴侣」AI学习助手，专注于帮助用户进行职业发展和技能提升。

你的主要任务：
1. 深度讲解：详细解释技术概念、原理和最佳实践
2. 笔记整理：帮助用户整理和总结学习笔记
3. 面试评价：评估用户的面试回答并给出改进建议
4. 学习建议：根据用户情况提供个性化学习建议

回答要求：
- 清晰、准确、易懂
- 使用 Markdown 格式
- 适当举例说明
- 给出实用建议`

type ChatInput struct {
	Message string `json:"message" binding:"required"`
	Context string `json:"context"`
}

type ChatReply struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatService AI 学习助手，续聊时回放最近的对话
type ChatService struct {
	Repo *repository.ChatRepository
	LLM  llm.Completer
	now  func() time.Time
}

func NewChatService(repo *repository.ChatRepository, c llm.Completer) *ChatService {
	return &ChatService{Repo: repo, LLM: c, now: time.Now}
}

// Send 大模型失败时不保存本轮对话
func (s *ChatService) Send(ctx context.Context, userID uint, in ChatInput) (*ChatReply, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, util.NewValidation("消息内容不能为空")
	}

	history, err := s.Repo.Recent(userID, memoryWindow)
	if err != nil {
		return nil, err
	}
	msgs := replayWindow(chatTurns(history), memoryWindow)
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	system := tutorSystemPrompt
	if c := strings.TrimSpace(in.Context); c != "" {
		system += "\n\n相关内容：\n" + c
	}

	reply, err := s.LLM.Complete(ctx, llm.Request{
		Purpose:     "tutor",
		System:      system,
		Messages:    msgs,
		Temperature: 0.7,
	})
	if err != nil {
		logger.Log.Warn("学习助手回复失败", zap.Uint("user_id", userID), zap.Error(err))
		return nil, util.NewUpstream("AI助手暂时不可用，请稍后重试", err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, util.ErrEmptyGeneration
	}

	question := &model.ChatMessage{UserID: userID, Role: model.TurnUser, Message: message, CreatedAt: s.now()}
	answer := &model.ChatMessage{UserID: userID, Role: model.TurnAssistant, Message: reply, CreatedAt: s.now()}
	if err := s.Repo.SaveExchange(question, answer); err != nil {
		return nil, err
	}
	return &ChatReply{Role: answer.Role, Message: answer.Message, CreatedAt: answer.CreatedAt}, nil
}

// History 按时间正序返回，第 1 页为最近的记录
func (s *ChatService) History(userID uint, page, limit int) ([]model.ChatMessage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultChatPage
	}
	return s.Repo.History(userID, (page-1)*limit, limit)
}

func (s *ChatService) Clear(userID uint) (int64, error) {
	return s.Repo.Clear(userID)
}

func chatTurns(history []model.ChatMessage) []model.Turn {
	turns := make([]model.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, model.Turn{Role: m.Role, Content: m.Message, Timestamp: m.CreatedAt})
	}
	return turns
}
