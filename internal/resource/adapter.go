// Package resource 学习资源检索：关键词提取、外部课程搜索、
// 书籍/证书分类目录以及大模型兜底生成。
package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"zhitu_backend/internal/model"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Adapter 单一资源类型的数据源，page 从 1 开始。
// 返回错误时仍可能附带降级条目。
type Adapter interface {
	Search(ctx context.Context, keywords []string, page int) ([]model.ResourceItem, error)
}

// 查询词最多使用前两个关键词
func joinQuery(keywords []string) string {
	if len(keywords) > 2 {
		keywords = keywords[:2]
	}
	return strings.Join(keywords, " ")
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func escape(s string) string {
	return url.QueryEscape(s)
}

// flexString 兼容大模型或第三方接口把数字和字符串混用的字段
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(data)
	return nil
}

func (f flexString) String() string {
	return string(f)
}
