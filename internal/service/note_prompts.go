package service

import (
	"fmt"
	"strings"
)

type careerKind string

const (
	careerProgrammer careerKind = "programmer"
	careerTeacher    careerKind = "teacher"
	careerGeneral    careerKind = "general"
)

var (
	programmerKeywords = []string{
		"程序员", "开发", "工程师", "前端", "后端", "全栈",
		"Frontend", "Backend", "Developer", "Engineer",
		"Java", "Python", "JavaScript", "React", "Vue", "Angular",
		"移动端", "iOS", "Android", "算法",
	}
	teacherKeywords = []string{
		"教师", "老师", "讲师", "教授", "教学", "培训师",
		"Teacher", "Instructor", "Professor", "Educator",
	}
)

// detectCareer 程序员关键词优先于教师关键词，忽略大小写
func detectCareer(position string) careerKind {
	p := strings.ToLower(position)
	for _, k := range programmerKeywords {
		if strings.Contains(p, strings.ToLower(k)) {
			return careerProgrammer
		}
	}
	for _, k := range teacherKeywords {
		if strings.Contains(p, strings.ToLower(k)) {
			return careerTeacher
		}
	}
	return careerGeneral
}

const noteDraftSystemPrompt = "你是一位专业的学习顾问和笔记整理专家。"

var careerNoteTemplates = map[careerKind]string{
	careerProgrammer: `你是一位资深编程导师。请根据以下数据，生成一份程序员专用的学习笔记：

职业：%[1]s

错题列表：
%[2]s

薄弱知识点：
%[3]s

学习进度概况：
%[4]s

请按以下结构生成 Markdown 格式笔记：

## 错题分析

（逐题分析错误原因、正确思路、代码示例）

## 知识点梳理

（提取涉及的技术栈、核心原理、最佳实践）
%[5]s
注意：
- 代码示例使用实际可运行的语法
- 提供具体的学习资源链接
- 关注工程实践而非纯理论
- 语言简洁专业，重点突出
`,
	careerTeacher: `你是一位教学专家。请根据以下数据，生成一份教师专用的教学笔记：

职业：%[1]s

学习记录：
%[2]s

薄弱环节：
%[3]s

学习进度：
%[4]s

请按以下结构生成笔记：

## 知识点掌握情况

（分析学习者的理解误区、知识盲区、认知水平）

## 教学反思

（如何更好地讲解这些内容、教学方法改进建议）
%[5]s
注意：
- 从教学角度分析问题
- 提供可操作的教学方案
- 关注学习者认知规律
- 包含实际教学案例
`,
	careerGeneral: `你是一位专业的学习顾问。请根据以下数据，生成一份个性化学习笔记：

职业方向：%[1]s

学习难点：
%[2]s

薄弱知识点：
%[3]s

学习进度：
%[4]s

请按以下结构生成 Markdown 格式笔记：

## 学习难点分析

（分析学习中遇到的问题、原因、解决思路）

## 知识点总结

（系统梳理相关知识点、重点难点）
%[5]s
注意：
- 内容贴合职业发展需求
- 提供实用的学习建议
- 包含可行的行动计划
- 语言通俗易懂
`,
}

const (
	studyPlanSection = `
## 个性化学习计划

（根据薄弱点制定3-7天的学习计划，包括每日学习目标、练习任务、检验标准）
`
	interviewTipsSection = `
## 面试技巧与策略

（针对这些知识点的面试常考题型、答题思路、注意事项、高频考点）
`
)

const maxDraftItems = 10

// draftItem 错题或技能点
type draftItem struct {
	Question string
	Reason   string
	Answer   string
}

type weakGroup struct {
	Category string
	Points   []string
}

func formatDraftItems(items []draftItem) string {
	if len(items) == 0 {
		return "暂无错题记录"
	}
	if len(items) > maxDraftItems {
		items = items[:maxDraftItems]
	}
	lines := make([]string, 0, len(items))
	for i, it := range items {
		reason, answer := it.Reason, it.Answer
		if reason == "" {
			reason = "未分析"
		}
		if answer == "" {
			answer = "暂无"
		}
		lines = append(lines, fmt.Sprintf("%d. 题目：%s\n   错误原因：%s\n   正确答案：%s", i+1, it.Question, reason, answer))
	}
	return strings.Join(lines, "\n")
}

func formatWeakGroups(groups []weakGroup) string {
	var lines []string
	for _, g := range groups {
		if len(g.Points) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s：%s", g.Category, strings.Join(g.Points, ", ")))
	}
	if len(lines) == 0 {
		return "暂无薄弱知识点分析"
	}
	return strings.Join(lines, "\n")
}

func noteDraftPrompt(position string, items []draftItem, weak []weakGroup, progress string, opts DraftOptions) string {
	var optional strings.Builder
	if opts.studyPlan() {
		optional.WriteString(studyPlanSection)
	}
	if opts.interviewTips() {
		optional.WriteString(interviewTipsSection)
	}
	weakText := "暂无薄弱知识点分析"
	if opts.weakPoints() {
		weakText = formatWeakGroups(weak)
	}

	prompt := fmt.Sprintf(careerNoteTemplates[detectCareer(position)],
		position, formatDraftItems(items), weakText, progress, optional.String())
	if req := strings.TrimSpace(opts.CustomRequirements); req != "" {
		prompt += "\n\n特别要求：\n" + req
	}
	return prompt
}
