package util

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindValidation
	KindUpstreamUnavailable
	KindMalformedUpstream
	KindUnauthorized
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindMalformedUpstream:
		return "malformed_upstream"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// AppError 业务错误，Message 面向用户，Err 为底层原因
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewNotFound(msg string) error {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewValidation(msg string) error {
	return &AppError{Kind: KindValidation, Message: msg}
}

func NewUpstream(msg string, err error) error {
	return &AppError{Kind: KindUpstreamUnavailable, Message: msg, Err: err}
}

func NewMalformed(msg string, err error) error {
	return &AppError{Kind: KindMalformedUpstream, Message: msg, Err: err}
}

// KindOf 取错误链上第一个 AppError 的类别
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrUserNotFound         = &AppError{Kind: KindNotFound, Message: "用户不存在"}
	ErrEmailRegistered      = &AppError{Kind: KindConflict, Message: "该邮箱已被注册"}
	ErrInvalidCredentials   = &AppError{Kind: KindUnauthorized, Message: "邮箱或密码错误"}
	ErrUserDisabled         = &AppError{Kind: KindUnauthorized, Message: "账号已被禁用"}
	ErrLearningPathNotFound = &AppError{Kind: KindNotFound, Message: "学习路线不存在"}
	ErrQuestionNotFound     = &AppError{Kind: KindNotFound, Message: "题目不存在"}
	ErrEmptyQuestionBank    = &AppError{Kind: KindNotFound, Message: "该学习路线下没有面试题"}
	ErrSessionNotFound      = &AppError{Kind: KindNotFound, Message: "会话不存在或已结束"}
	ErrUnsupportedContent   = &AppError{Kind: KindValidation, Message: "不支持的内容类型"}
	ErrEmptyGeneration      = &AppError{Kind: KindUpstreamUnavailable, Message: "AI生成的内容为空"}
	ErrNoteNotFound         = &AppError{Kind: KindNotFound, Message: "笔记不存在"}
	ErrNotebookNotFound     = &AppError{Kind: KindNotFound, Message: "笔记本不存在"}
	ErrDefaultNotebook      = &AppError{Kind: KindValidation, Message: "不能删除默认笔记本"}
)
