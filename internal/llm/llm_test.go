package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/util"
)

type chatRequest struct {
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, content string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]interface{}{{"index": 0, "message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsRequest(t *testing.T) {
	var seen chatRequest
	srv := newTestServer(t, http.StatusOK, "  你好  ", &seen)
	c := New(config.AIConfig{BaseURL: srv.URL + "/v1", APIKey: "k", Model: "gpt-test"})

	out, err := c.Complete(context.Background(), Request{
		Purpose:     "test",
		System:      "你是面试官",
		Messages:    []Message{{Role: RoleUser, Content: "开始"}},
		Temperature: 0.7,
		MaxTokens:   100,
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "你好" {
		t.Errorf("out = %q, want trimmed content", out)
	}
	if seen.Model != "gpt-test" || seen.MaxTokens != 100 {
		t.Errorf("request = %+v", seen)
	}
	if seen.ResponseFormat == nil || seen.ResponseFormat.Type != "json_object" {
		t.Errorf("json mode not requested: %+v", seen.ResponseFormat)
	}
	if len(seen.Messages) != 2 || seen.Messages[0].Role != "system" || seen.Messages[1].Content != "开始" {
		t.Errorf("messages = %+v", seen.Messages)
	}
}

func TestCompleteSetModel(t *testing.T) {
	var seen chatRequest
	srv := newTestServer(t, http.StatusOK, "ok", &seen)
	c := New(config.AIConfig{BaseURL: srv.URL + "/v1", Model: "a"})
	c.SetModel("b")
	c.SetModel("")

	if _, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if seen.Model != "b" {
		t.Errorf("model = %q, want b", seen.Model)
	}
}

func TestCompleteUpstreamErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
	}{
		{"server error", http.StatusInternalServerError, ""},
		{"empty content", http.StatusOK, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.content, nil)
			c := New(config.AIConfig{BaseURL: srv.URL + "/v1", Model: "m"})
			_, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			if !util.IsKind(err, util.KindUpstreamUnavailable) {
				t.Fatalf("err = %v, want upstream unavailable", err)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Categories []string `json:"categories"`
	}
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{"plain", `{"categories":["ai","python"]}`, 2, false},
		{"fenced", "好的：\n```json\n{\"categories\":[\"java\"]}\n```\n以上", 1, false},
		{"bare fence", "```\n{\"categories\":[\"a\",\"b\",\"c\"]}\n```", 3, false},
		{"inline fence", "```json{\"categories\":[\"a\"]}```", 1, false},
		{"surrounded", `结果如下 {"categories":["react"]} 希望有帮助`, 1, false},
		{"no object", "抱歉，我无法回答", 0, true},
		{"broken", `{"categories": [`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := ExtractJSON(tt.raw, &p)
			if tt.wantErr {
				if !util.IsKind(err, util.KindMalformedUpstream) {
					t.Fatalf("err = %v, want malformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if len(p.Categories) != tt.want {
				t.Errorf("categories = %v, want %d", p.Categories, tt.want)
			}
		})
	}
}
