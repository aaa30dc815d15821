package resource

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		position string
		markdown string
		want     []string
	}{
		{
			name:     "position only",
			position: "Go后端工程师",
			want:     []string{"Go后端工程师"},
		},
		{
			name:     "bold spans first",
			position: "Java开发",
			markdown: "# 路线\n- **Spring Boot** 基础\n- **JVM** 调优\n- **spring boot** 进阶",
			want:     []string{"Java开发", "Spring Boot", "JVM", "Spring"},
		},
		{
			name:     "tech terms case insensitive",
			position: "全栈工程师",
			markdown: "学习 docker 和 Kubernetes，再学 DOCKER compose，最后了解微服务",
			want:     []string{"全栈工程师", "docker", "Kubernetes", "微服务"},
		},
		{
			name:     "javascript not split into java",
			position: "前端",
			markdown: "掌握 JavaScript 与 React",
			want:     []string{"前端", "JavaScript", "React"},
		},
		{
			name:     "truncated to five",
			position: "数据工程师",
			markdown: "**Python** **SQL** **Spark** **Flink** **Kafka** **Hive**",
			want:     []string{"数据工程师", "Python", "SQL", "Spark", "Flink"},
		},
		{
			name:     "blank entries dropped",
			position: "  ",
			markdown: "** ** **Redis**",
			want:     []string{"Redis"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.position, tt.markdown)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	md := "**Redis** **MySQL** 使用 Docker 部署 Linux 服务，HTTP 与 TCP 协议，后端微服务"
	first := ExtractKeywords("后端工程师", md)
	for i := 0; i < 20; i++ {
		if got := ExtractKeywords("后端工程师", md); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v != %v", i, got, first)
		}
	}
	if len(first) > 5 {
		t.Fatalf("len = %d, want <= 5", len(first))
	}
	seen := map[string]bool{}
	for _, k := range first {
		if seen[strings.ToLower(k)] {
			t.Fatalf("case-insensitive duplicate %q in %v", k, first)
		}
		seen[strings.ToLower(k)] = true
	}
}
