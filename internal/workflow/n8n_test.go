package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/util"
)

func TestRunSendsPayload(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"success":true,"data":{"output":"# Go 学习路线","timestamp":"2024-05-01T10:00:00"}}`))
	}))
	t.Cleanup(srv.Close)

	c := New(config.WorkflowConfig{WebhookURL: srv.URL})
	if !c.Enabled() {
		t.Fatal("client with webhook should be enabled")
	}
	res, err := c.Run(context.Background(), Request{UserID: "7", Position: "Go 开发", JobDescription: "负责后端"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Output != "# Go 学习路线" || res.Timestamp == "" {
		t.Errorf("result = %+v", res)
	}
	if got.UserID != "7" || len(got.ContentTypes) != 1 || got.ContentTypes[0] != "mindmap" {
		t.Errorf("payload = %+v", got)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   util.ErrorKind
	}{
		{"non 2xx", http.StatusInternalServerError, `oops`, util.KindUpstreamUnavailable},
		{"workflow failed", http.StatusOK, `{"success":false,"error":"节点执行失败"}`, util.KindUpstreamUnavailable},
		{"not json", http.StatusOK, `<html>`, util.KindMalformedUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			_, err := New(config.WorkflowConfig{WebhookURL: srv.URL}).Run(context.Background(), Request{Position: "x"})
			if !util.IsKind(err, tt.kind) {
				t.Fatalf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestRunTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := New(config.WorkflowConfig{WebhookURL: srv.URL})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Run(ctx, Request{Position: "x"}); !util.IsKind(err, util.KindUpstreamUnavailable) {
		t.Fatalf("err = %v, want upstream unavailable", err)
	}
}

func TestDisabledWithoutWebhook(t *testing.T) {
	if New(config.WorkflowConfig{WebhookURL: "  "}).Enabled() {
		t.Error("blank webhook should disable the client")
	}
	var c *Client
	if c.Enabled() {
		t.Error("nil client should be disabled")
	}
}
