package resource

import (
	"context"
	"errors"
	"sync"
	"zhitu_backend/internal/llm"
)

// fakeLLM 按 Purpose 返回预设内容
type fakeLLM struct {
	mu      sync.Mutex
	replies map[string]string
	calls   []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if out, ok := f.replies[req.Purpose]; ok {
		return out, nil
	}
	return "", errors.New("fake llm: unavailable")
}

func (f *fakeLLM) count(purpose string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Purpose == purpose {
			n++
		}
	}
	return n
}

type memoryCache struct {
	data map[string][]string
}

func (m *memoryCache) Get(_ context.Context, key string) ([]string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryCache) Set(_ context.Context, key string, categories []string) {
	if m.data == nil {
		m.data = map[string][]string{}
	}
	m.data[key] = categories
}
