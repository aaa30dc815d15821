package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/util"
	"zhitu_backend/internal/workflow"
)

// NarrativeRequest 学习路线图、知识点详解、面试技巧等长文本的生成参数
type NarrativeRequest struct {
	UserID         uint
	Position       string
	JobDescription string
	Type           model.ContentType
}

// Narrator 生成 Markdown 长文本，返回空串视为失败
type Narrator interface {
	Narrate(ctx context.Context, req NarrativeRequest) (string, error)
}

const narratorSystemPrompt = "你是一位资深职业规划顾问，熟悉各类技术岗位的能力模型，擅长为求职者制定学习路线和面试准备材料。请使用Markdown格式输出。"

func mindmapPrompt(position, jobDescription string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请为'%s'职位生成一份完整的学习路线图。\n\n", position)
	if jobDescription != "" {
		fmt.Fprintf(&b, "职位描述：\n%s\n\n", jobDescription)
	}
	b.WriteString("要求：\n1. 使用Markdown多级标题组织学习阶段\n2. 每个阶段列出需要掌握的技能，关键技术用**加粗**标注\n3. 由基础到进阶，给出各阶段的学习重点\n4. 最后给出求职准备建议")
	return b.String()
}

// topicPrompt 知识点详解与面试题库的提示词，同时作为工作流的职位描述发送
func topicPrompt(t model.ContentType, position string) (string, error) {
	switch t {
	case model.ContentKnowledge:
		return fmt.Sprintf("请为'%s'职位生成详细的知识点详解，包括：\n1. 核心概念说明\n2. 技术要点分析\n3. 学习路径建议\n4. 实践应用指导\n\n要求：使用Markdown格式，内容专业且易懂。", position), nil
	case model.ContentInterviewTips:
		return fmt.Sprintf("请为'%s'职位生成面试题库，包括：\n1. 常见面试问题及答案\n2. 技术难点剖析\n3. 项目经验问题\n4. 面试技巧建议\n\n要求：使用Markdown格式，每题包含问题、参考答案、考察点。", position), nil
	}
	return "", util.ErrUnsupportedContent
}

type WorkflowNarrator struct {
	Client *workflow.Client
}

func (n *WorkflowNarrator) Narrate(ctx context.Context, req NarrativeRequest) (string, error) {
	jd := req.JobDescription
	if req.Type != model.ContentMindmap {
		p, err := topicPrompt(req.Type, req.Position)
		if err != nil {
			return "", err
		}
		jd = p
	}

	res, err := n.Client.Run(ctx, workflow.Request{
		UserID:         strconv.FormatUint(uint64(req.UserID), 10),
		Position:       req.Position,
		JobDescription: jd,
		ContentTypes:   []string{string(model.ContentMindmap)},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Output), nil
}

type LLMNarrator struct {
	LLM llm.Completer
}

func (n *LLMNarrator) Narrate(ctx context.Context, req NarrativeRequest) (string, error) {
	prompt := mindmapPrompt(req.Position, req.JobDescription)
	if req.Type != model.ContentMindmap {
		p, err := topicPrompt(req.Type, req.Position)
		if err != nil {
			return "", err
		}
		prompt = p
	}

	out, err := n.LLM.Complete(ctx, llm.Request{
		Purpose:     "narrative_" + string(req.Type),
		System:      narratorSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   4000,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// NewNarrator 配置了 n8n webhook 时走工作流，否则直接调用大模型
func NewNarrator(wf *workflow.Client, c llm.Completer) Narrator {
	if wf.Enabled() {
		return &WorkflowNarrator{Client: wf}
	}
	return &LLMNarrator{LLM: c}
}
