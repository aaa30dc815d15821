package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// memoryWindow 续聊时回放的最近轮次数，不含系统提示
	memoryWindow       = 10
	shortAnswerRunes   = 30
	defaultHistorySize = 10
)

const (
	HintNeedsImprovement = "needs_improvement"
	HintGood             = "good"
	HintExcellent        = "excellent"
)

var probeWords = []string{"详细", "具体", "为什么", "如何"}

const evaluatorSystemPrompt = "你是一位专业的面试评估专家，擅长客观评价候选人表现。"

func interviewerPrompt(position string) string {
	return fmt.Sprintf(`你是一位经验丰富的%s面试官。你的任务是：

1. 根据候选人回答质量，灵活决定是否追问或提出新问题
2. 追问策略：
   - 回答浅显 → 追问技术细节、实现原理
   - 回答模糊 → 要求举例说明、具体场景
   - 回答完整 → 认可后进入下一题
3. 保持专业友好的面试氛围
4. 每次回复100字以内，简洁有力

你可以：
- 深挖技术原理："你能详细说说这个技术的底层实现吗？"
- 实际应用："你在项目中是如何使用的？"
- 问题解决："如果遇到XX问题，你会怎么处理？"
- 对比分析："为什么选择这个方案而不是其他方案？"

请根据对话历史，给出合适的追问或新问题。`, position)
}

func evaluationPrompt(position, transcript string) string {
	return fmt.Sprintf(`你是%s领域的资深面试官。请对以下面试表现进行全面评价。

面试对话记录：
%s

请按照以下 JSON 格式输出评价（只返回 JSON，不要其他内容）：
{
    "overall_score": 85,
    "dimension_scores": {
        "technical_depth": 80,
        "expression": 85,
        "problem_solving": 90,
        "experience": 75
    },
    "strengths": ["逻辑清晰，表达流畅"],
    "weaknesses": ["实际项目经验不够具体"],
    "suggestions": ["建议多做实际项目"],
    "summary": "候选人基础扎实，表达清晰，建议加强实践经验..."
}

评分标准（0-100）：
- technical_depth: 技术深度与原理理解
- expression: 表达能力与逻辑清晰度
- problem_solving: 问题解决思路
- experience: 实践经验与项目经历`, position, transcript)
}

// fallbackFollowUps 大模型不可用时的追问模板
var fallbackFollowUps = []string{
	"谢谢你的回答。能否结合一个具体的项目场景，详细说说你是如何实践的？",
	"明白了。如果在生产环境中遇到相关的性能或稳定性问题，你会如何排查和处理？",
	"好的。你为什么选择这个方案？和其他可选方案相比有哪些取舍？",
}

type StartResult struct {
	SessionID    uint   `json:"session_id"`
	Position     string `json:"position"`
	FirstMessage string `json:"first_message"`
}

type ContinueResult struct {
	InterviewerMessage string `json:"interviewer_message"`
	QualityHint        string `json:"quality_hint"`
	QuestionCount      int    `json:"question_count"`
}

type EndResult struct {
	SessionID       uint              `json:"session_id"`
	DurationMinutes int               `json:"duration_minutes"`
	Evaluation      *model.Evaluation `json:"evaluation"`
}

type SessionSummary struct {
	ID              uint      `json:"id"`
	Position        string    `json:"position"`
	Score           *int      `json:"score"`
	DurationMinutes int       `json:"duration_minutes"`
	StartedAt       time.Time `json:"started_at"`
}

type SessionDetail struct {
	ID              uint                `json:"id"`
	Position        string              `json:"position"`
	Status          model.SessionStatus `json:"status"`
	Conversation    []model.Turn        `json:"conversation"`
	Evaluation      *model.Evaluation   `json:"evaluation"`
	DurationMinutes int                 `json:"duration_minutes"`
}

// InterviewSimulatorService 模拟面试：in_progress → completed，结束后不可继续
type InterviewSimulatorService struct {
	PathRepo     *repository.LearningPathRepository
	QuestionRepo *repository.InterviewQuestionRepository
	SessionRepo  *repository.InterviewSessionRepository
	LLM          llm.Completer

	now  func() time.Time
	pick func(n int) int
}

func NewInterviewSimulatorService(
	pathRepo *repository.LearningPathRepository,
	questionRepo *repository.InterviewQuestionRepository,
	sessionRepo *repository.InterviewSessionRepository,
	c llm.Completer,
) *InterviewSimulatorService {
	return &InterviewSimulatorService{
		PathRepo:     pathRepo,
		QuestionRepo: questionRepo,
		SessionRepo:  sessionRepo,
		LLM:          c,
		now:          time.Now,
		pick:         rand.Intn,
	}
}

func (s *InterviewSimulatorService) Start(ctx context.Context, userID, pathID uint) (*StartResult, error) {
	path, err := s.PathRepo.FindByIDForUser(pathID, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLearningPathNotFound)
	}
	questions, err := s.QuestionRepo.ListByPath(pathID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrEmptyQuestionBank
	}

	seed := questions[s.pick(len(questions))]
	first := fmt.Sprintf("你好，欢迎参加%s岗位的面试。让我们开始吧。\n\n%s", path.Position, seed.Question)
	now := s.now()

	session := &model.InterviewSession{
		UserID:         userID,
		LearningPathID: &path.ID,
		Position:       path.Position,
		Status:         model.SessionInProgress,
		Conversation: []model.Turn{
			{Role: model.TurnSystem, Content: interviewerPrompt(path.Position), Timestamp: now},
			{Role: model.TurnAssistant, Content: first, Timestamp: now},
		},
		StartedAt: now,
	}
	if err := s.SessionRepo.Create(session); err != nil {
		return nil, err
	}

	logger.Log.Info("模拟面试开始",
		zap.Uint("session_id", session.ID),
		zap.Uint("user_id", userID),
		zap.Uint("question_id", seed.ID),
	)
	return &StartResult{SessionID: session.ID, Position: path.Position, FirstMessage: first}, nil
}

func (s *InterviewSimulatorService) inProgress(userID, sessionID uint) (*model.InterviewSession, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrSessionNotFound)
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionNotFound
	}
	return session, nil
}

// Continue 追加候选人回答并生成面试官下一轮发言
func (s *InterviewSimulatorService) Continue(ctx context.Context, userID, sessionID uint, answer string) (*ContinueResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, util.NewValidation("回答内容不能为空")
	}

	session, err := s.inProgress(userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.Conversation = append(session.Conversation, model.Turn{
		Role: model.TurnUser, Content: answer, Timestamp: s.now(),
	})

	reply, err := s.LLM.Complete(ctx, llm.Request{
		Purpose:     "interviewer",
		System:      systemTurn(session.Conversation),
		Messages:    replayWindow(session.Conversation, memoryWindow),
		Temperature: 0.7,
	})
	if err != nil {
		logger.Log.Warn("面试官回复生成失败，使用模板追问",
			zap.Uint("session_id", session.ID),
			zap.Error(err),
		)
		reply = fallbackFollowUps[session.UserTurns()%len(fallbackFollowUps)]
	}

	session.Conversation = append(session.Conversation, model.Turn{
		Role: model.TurnAssistant, Content: reply, Timestamp: s.now(),
	})
	if err := s.SessionRepo.SaveConversation(session); err != nil {
		// 同一会话被并发结束
		return nil, notFoundAs(err, util.ErrSessionNotFound)
	}

	return &ContinueResult{
		InterviewerMessage: reply,
		QualityHint:        QualityHint(answer, reply),
		QuestionCount:      session.UserTurns(),
	}, nil
}

// End 结束会话并生成评估。评估只写一次，已结束的会话直接返回原评估。
func (s *InterviewSimulatorService) End(ctx context.Context, userID, sessionID uint) (*EndResult, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrSessionNotFound)
	}
	if session.Status == model.SessionCompleted {
		return endResult(session), nil
	}

	ended := s.now()
	duration := int(ended.Sub(session.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	session.Status = model.SessionCompleted
	session.EndedAt = &ended
	session.DurationSeconds = duration
	session.Evaluation = s.evaluate(ctx, session)

	updated, err := s.SessionRepo.Complete(session)
	if err != nil {
		return nil, err
	}
	if !updated {
		// 并发结束时以先写入的评估为准
		stored, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
		if err != nil {
			return nil, notFoundAs(err, util.ErrSessionNotFound)
		}
		return endResult(stored), nil
	}
	return endResult(session), nil
}

func (s *InterviewSimulatorService) evaluate(ctx context.Context, session *model.InterviewSession) *model.Evaluation {
	raw, err := s.LLM.Complete(ctx, llm.Request{
		Purpose:     "evaluation",
		System:      evaluatorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: evaluationPrompt(session.Position, transcript(session.Conversation))}},
		Temperature: 0.7,
		JSON:        true,
	})
	if err == nil {
		var ev model.Evaluation
		if err = llm.ExtractJSON(raw, &ev); err == nil {
			return &ev
		}
	}
	logger.Log.Warn("面试评估生成失败，使用默认评估",
		zap.Uint("session_id", session.ID),
		zap.Error(err),
	)
	return model.DefaultEvaluation()
}

func (s *InterviewSimulatorService) History(userID uint, limit int) ([]SessionSummary, error) {
	if limit < 1 || limit > 100 {
		limit = defaultHistorySize
	}
	sessions, err := s.SessionRepo.ListCompleted(userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]SessionSummary, 0, len(sessions))
	for _, ss := range sessions {
		item := SessionSummary{
			ID:              ss.ID,
			Position:        ss.Position,
			DurationMinutes: ss.DurationSeconds / 60,
			StartedAt:       ss.StartedAt,
		}
		if ss.Evaluation != nil {
			score := ss.Evaluation.OverallScore
			item.Score = &score
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *InterviewSimulatorService) Detail(userID, sessionID uint) (*SessionDetail, error) {
	session, err := s.SessionRepo.FindByIDForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NewNotFound("会话不存在")
		}
		return nil, err
	}
	return &SessionDetail{
		ID:              session.ID,
		Position:        session.Position,
		Status:          session.Status,
		Conversation:    session.Conversation,
		Evaluation:      session.Evaluation,
		DurationMinutes: session.DurationSeconds / 60,
	}, nil
}

// QualityHint 按回答长度和追问措辞粗略判断回答质量，仅供前端提示
func QualityHint(answer, next string) string {
	if utf8.RuneCountInString(answer) < shortAnswerRunes {
		return HintNeedsImprovement
	}
	for _, w := range probeWords {
		if strings.Contains(next, w) {
			return HintGood
		}
	}
	return HintExcellent
}

func endResult(s *model.InterviewSession) *EndResult {
	ev := s.Evaluation
	if ev == nil {
		ev = model.DefaultEvaluation()
	}
	return &EndResult{
		SessionID:       s.ID,
		DurationMinutes: s.DurationSeconds / 60,
		Evaluation:      ev,
	}
}

func systemTurn(turns []model.Turn) string {
	for _, t := range turns {
		if t.Role == model.TurnSystem {
			return t.Content
		}
	}
	return ""
}

// replayWindow 取最近 k 条非系统轮次
func replayWindow(turns []model.Turn, k int) []llm.Message {
	var msgs []llm.Message
	for _, t := range turns {
		switch t.Role {
		case model.TurnUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Content})
		case model.TurnAssistant:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: t.Content})
		}
	}
	if len(msgs) > k {
		msgs = msgs[len(msgs)-k:]
	}
	return msgs
}

func transcript(turns []model.Turn) string {
	var parts []string
	for _, t := range turns {
		switch t.Role {
		case model.TurnUser:
			parts = append(parts, "候选人："+t.Content)
		case model.TurnAssistant:
			parts = append(parts, "面试官："+t.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
