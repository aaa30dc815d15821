package llm

import (
	"encoding/json"
	"errors"
	"strings"
	"zhitu_backend/internal/util"
)

var errNoJSON = errors.New("no json object found")

// ExtractJSON 依次尝试：整体解析、```json 代码块、首个 { 到最后一个 }
func ExtractJSON(raw string, v interface{}) error {
	s := strings.TrimSpace(raw)

	err := json.Unmarshal([]byte(s), v)
	if err == nil {
		return nil
	}

	if block, ok := fencedBlock(s); ok {
		if err = json.Unmarshal([]byte(block), v); err == nil {
			return nil
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return util.NewMalformed("大模型返回内容不是有效的JSON", errNoJSON)
	}
	if err = json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return util.NewMalformed("大模型返回内容不是有效的JSON", err)
	}
	return nil
}

func fencedBlock(s string) (string, bool) {
	open := strings.Index(s, "```")
	if open == -1 {
		return "", false
	}
	body := s[open+3:]
	// 跳过语言标记，如 ```json
	if nl := strings.IndexByte(body, '\n'); nl != -1 {
		body = body[nl+1:]
	}
	end := strings.Index(body, "```")
	if end == -1 {
		return strings.TrimSpace(body), true
	}
	return strings.TrimSpace(body[:end]), true
}
