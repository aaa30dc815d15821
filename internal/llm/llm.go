// Package llm 封装 OpenAI 兼容的对话补全接口。
package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/monitoring"
	"zhitu_backend/pkg/tracing"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

var ErrEmptyCompletion = errors.New("llm: empty completion")

type Message struct {
	Role    string
	Content string
}

// Request 一次补全调用。Purpose 仅用于指标和链路标签。
type Request struct {
	Purpose     string
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	JSON        bool
}

// Completer 由 Client 实现，测试中可替换
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Client struct {
	api *openai.Client

	mu    sync.RWMutex
	model string
}

func New(cfg config.AIConfig) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: 3 * time.Minute}
	return &Client{
		api:   openai.NewClientWithConfig(oc),
		model: cfg.Model,
	}
}

func (c *Client) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel 配置热更新时切换模型
func (c *Client) SetModel(model string) {
	if model == "" {
		return
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	purpose := req.Purpose
	if purpose == "" {
		purpose = "default"
	}

	ctx, span := tracing.Start(ctx, "llm."+purpose)
	defer span.End()

	model := c.Model()
	span.SetAttributes(attribute.String("llm.model", model))

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	creq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, creq)
	monitoring.LLMDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.LLMRequests.WithLabelValues(purpose, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", util.NewUpstream("大模型服务调用失败", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		monitoring.LLMRequests.WithLabelValues(purpose, "empty").Inc()
		span.SetStatus(codes.Error, "empty completion")
		return "", util.NewUpstream("大模型返回内容为空", ErrEmptyCompletion)
	}

	monitoring.LLMRequests.WithLabelValues(purpose, "ok").Inc()
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
