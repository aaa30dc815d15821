// Package workflow 调用 n8n webhook 生成学习路线等长文本内容。
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const defaultTimeout = 120 * time.Second

type Request struct {
	UserID         string   `json:"user_id"`
	Position       string   `json:"position"`
	JobDescription string   `json:"job_description"`
	ContentTypes   []string `json:"content_types"`
}

type Result struct {
	Output    string `json:"output"`
	Timestamp string `json:"timestamp"`
}

type response struct {
	Success bool    `json:"success"`
	Data    *Result `json:"data"`
	Error   string  `json:"error"`
}

type Client struct {
	webhookURL string
	http       *http.Client
}

func New(cfg config.WorkflowConfig) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		webhookURL: strings.TrimSpace(cfg.WebhookURL),
		http:       &http.Client{Timeout: timeout},
	}
}

// Enabled 未配置 webhook 时由大模型直接生成
func (c *Client) Enabled() bool {
	return c != nil && c.webhookURL != ""
}

func (c *Client) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.ContentTypes) == 0 {
		req.ContentTypes = []string{"mindmap"}
	}

	ctx, span := tracing.Start(ctx, "workflow.run")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("workflow.content_types", req.ContentTypes))

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		return nil, util.NewUpstream("n8n工作流调用失败", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.NewUpstream("n8n工作流调用失败", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, util.NewUpstream("n8n工作流调用失败", fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200)))
	}

	var out response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, util.NewMalformed("n8n工作流返回格式错误", err)
	}
	if !out.Success {
		msg := out.Error
		if msg == "" {
			msg = "未知错误"
		}
		return nil, util.NewUpstream("n8n工作流执行失败: "+msg, nil)
	}
	if out.Data == nil {
		return &Result{}, nil
	}
	return out.Data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
