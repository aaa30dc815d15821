package model

import "strings"

// ContentType 学习路线下可生成的内容类型
type ContentType string

const (
	ContentCourses        ContentType = "courses"
	ContentBooks          ContentType = "books"
	ContentCertifications ContentType = "certifications"
	ContentKnowledge      ContentType = "knowledge"
	ContentInterviewTips  ContentType = "interview-tips"
	ContentMindmap        ContentType = "mindmap"
)

var contentLabels = map[ContentType]string{
	ContentCourses:        "课程",
	ContentBooks:          "书籍",
	ContentCertifications: "证书",
	ContentKnowledge:      "知识点详解",
	ContentInterviewTips:  "面试技巧",
	ContentMindmap:        "学习路线图",
}

// ParseContentType 兼容旧版本的 "interview" 标签
func ParseContentType(s string) (ContentType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "interview" {
		return ContentInterviewTips, true
	}
	t := ContentType(s)
	_, ok := contentLabels[t]
	return t, ok
}

func (t ContentType) IsResource() bool {
	return t == ContentCourses || t == ContentBooks || t == ContentCertifications
}

func (t ContentType) Label() string {
	if l, ok := contentLabels[t]; ok {
		return l
	}
	return string(t)
}

func ResourceTypes() []ContentType {
	return []ContentType{ContentCourses, ContentBooks, ContentCertifications}
}
