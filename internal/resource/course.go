package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/util"
	"zhitu_backend/pkg/logger"
	"zhitu_backend/pkg/monitoring"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	PlatformBilibili = "bilibili"
	PlatformImooc    = "imooc"
	PlatformGeekbang = "geekbang"
)

var (
	// 按页码轮换查询措辞，{0} 主关键词，{1} 前两个关键词
	courseQueryStrategies = []struct {
		suffix string
		useTwo bool
	}{
		{"教程", false},
		{"入门", true},
		{"实战项目", false},
		{"进阶", true},
		{"从零开始", false},
		{"完整课程", true},
		{"零基础", false},
		{"系统学习", true},
		{"快速入门", false},
		{"核心技术", true},
	}

	// 综合、播放量、最新、弹幕、收藏
	bilibiliOrders = []string{"totalrank", "click", "pubdate", "dm", "stow"}
	// 全部、60分钟+、30-60分钟、10-30分钟
	bilibiliDurations = []int{0, 4, 3, 2}

	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
)

type platformSearch struct {
	name  string
	limit int
	fn    func(ctx context.Context, query string, page, limit int) ([]model.ResourceItem, error)
	// pointerOnly 平台只生成搜索入口，不计入整体失败判断
	pointerOnly bool
}

// ErrCourseSourcesUnavailable 所有可搜索的平台都请求失败
var ErrCourseSourcesUnavailable = util.NewUpstream("课程平台均不可用", nil)

// CourseAdapter 并发搜索 B站、慕课网、极客时间
type CourseAdapter struct {
	client      *http.Client
	bilibiliURL string
	imoocURL    string
	timeout     time.Duration
}

func NewCourseAdapter(cfg config.SearchConfig) *CourseAdapter {
	return &CourseAdapter{
		client:      &http.Client{},
		bilibiliURL: cfg.BilibiliURL,
		imoocURL:    cfg.ImoocURL,
		timeout:     cfg.Timeout(),
	}
}

func CourseQuery(keywords []string, page int) string {
	s := courseQueryStrategies[(normalizePage(page)-1)%len(courseQueryStrategies)]
	head := keywords[0]
	if s.useTwo {
		head = joinQuery(keywords)
	}
	return head + " " + s.suffix
}

func (a *CourseAdapter) platforms() []platformSearch {
	return []platformSearch{
		{PlatformBilibili, 5, a.searchBilibili, false},
		{PlatformImooc, 3, a.searchImooc, false},
		{PlatformGeekbang, 2, a.searchGeekbang, true},
	}
}

// Search 单个平台失败时返回该平台的搜索入口，不影响其它平台。
// 可搜索平台全部出错时仍返回搜索入口，同时返回 ErrCourseSourcesUnavailable。
func (a *CourseAdapter) Search(ctx context.Context, keywords []string, page int) ([]model.ResourceItem, error) {
	if len(keywords) == 0 {
		return nil, util.NewValidation("缺少搜索关键词")
	}
	page = normalizePage(page)
	query := CourseQuery(keywords, page)

	platforms := a.platforms()
	results := make([][]model.ResourceItem, len(platforms))
	failed := make([]bool, len(platforms))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range platforms {
		i, p := i, p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, a.timeout)
			defer cancel()

			items, err := p.fn(pctx, query, page, p.limit)
			if err != nil || len(items) == 0 {
				reason := "empty"
				if err != nil {
					reason = "error"
					failed[i] = true
					logger.Log.Warn("课程平台搜索失败，使用搜索入口",
						zap.String("platform", p.name),
						zap.String("query", query),
						zap.Error(err))
				}
				monitoring.ResourceFallbacks.WithLabelValues(p.name, reason).Inc()
				items = []model.ResourceItem{platformPointer(p.name, query)}
			}
			if len(items) > p.limit {
				items = items[:p.limit]
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []model.ResourceItem
	allFailed := true
	for i, items := range results {
		merged = append(merged, items...)
		if !platforms[i].pointerOnly && !failed[i] {
			allFailed = false
		}
	}
	if allFailed {
		return merged, ErrCourseSourcesUnavailable
	}
	return merged, nil
}

type bilibiliResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Result []bilibiliVideo `json:"result"`
	} `json:"data"`
}

type bilibiliVideo struct {
	Title       string     `json:"title"`
	ArcURL      string     `json:"arcurl"`
	BVID        string     `json:"bvid"`
	Pic         string     `json:"pic"`
	Author      string     `json:"author"`
	Play        flexString `json:"play"`
	Description string     `json:"description"`
	Duration    flexString `json:"duration"`
}

func (a *CourseAdapter) searchBilibili(ctx context.Context, query string, page, limit int) ([]model.ResourceItem, error) {
	params := url.Values{}
	params.Set("keyword", query)
	params.Set("search_type", "video")
	params.Set("page", "1")
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("order", bilibiliOrders[(page-1)%len(bilibiliOrders)])
	params.Set("duration", strconv.Itoa(bilibiliDurations[(page-1)%len(bilibiliDurations)]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.bilibiliURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://www.bilibili.com")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bilibili: unexpected status %d", resp.StatusCode)
	}

	var body bilibiliResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("bilibili: decode: %w", err)
	}
	if body.Code != 0 {
		return nil, fmt.Errorf("bilibili: code %d: %s", body.Code, body.Message)
	}

	items := make([]model.ResourceItem, 0, limit)
	for _, v := range body.Data.Result {
		if len(items) == limit {
			break
		}
		link := v.ArcURL
		if link == "" {
			link = "https://www.bilibili.com/video/" + v.BVID
		}
		cover := v.Pic
		if strings.HasPrefix(cover, "//") {
			cover = "https:" + cover
		}
		items = append(items, model.ResourceItem{
			Title:       cleanHTML(v.Title),
			URL:         link,
			Cover:       cover,
			Platform:    PlatformBilibili,
			Author:      v.Author,
			Views:       formatPlays(v.Play.String()),
			Description: cleanHTML(v.Description),
			Duration:    formatDuration(v.Duration.String()),
		})
	}
	return items, nil
}

func (a *CourseAdapter) searchImooc(ctx context.Context, query string, page, limit int) ([]model.ResourceItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.imoocURL+"?words="+escape(query), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imooc: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imooc: parse: %w", err)
	}

	var items []model.ResourceItem
	doc.Find(".course-card-container").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find(".course-card-name").First().Text())
		href, ok := card.Find("a").First().Attr("href")
		if title == "" || !ok {
			return true
		}
		cover, _ := card.Find(".course-card-top img").First().Attr("src")
		views := strings.TrimSpace(card.Find(".course-card-price").First().Text())
		if views == "" {
			views = "查看详情"
		}
		items = append(items, model.ResourceItem{
			Title:       title,
			URL:         "https://www.imooc.com" + href,
			Cover:       cover,
			Platform:    PlatformImooc,
			Author:      "慕课网",
			Views:       views,
			Description: query + "相关课程",
		})
		return len(items) < limit
	})
	return items, nil
}

// 极客时间需要登录，只提供搜索入口
func (a *CourseAdapter) searchGeekbang(_ context.Context, query string, _, _ int) ([]model.ResourceItem, error) {
	return []model.ResourceItem{platformPointer(PlatformGeekbang, query)}, nil
}

func platformPointer(platform, query string) model.ResourceItem {
	switch platform {
	case PlatformBilibili:
		return model.ResourceItem{
			Title:       query + "入门到精通教程",
			URL:         "https://search.bilibili.com/all?keyword=" + escape(query+" 教程"),
			Platform:    PlatformBilibili,
			Author:      "优质UP主",
			Views:       "点击搜索查看",
			Description: fmt.Sprintf("在B站搜索 %q 相关优质教程", query),
		}
	case PlatformImooc:
		return model.ResourceItem{
			Title:       query + "系统课程",
			URL:         "https://www.imooc.com/search/?words=" + escape(query),
			Platform:    PlatformImooc,
			Author:      "慕课网",
			Views:       "点击搜索查看",
			Description: fmt.Sprintf("在慕课网搜索 %q 相关课程", query),
		}
	default:
		return model.ResourceItem{
			Title:       query + "专栏课程",
			URL:         "https://time.geekbang.org/search?q=" + escape(query),
			Platform:    PlatformGeekbang,
			Author:      "极客时间",
			Views:       "点击搜索查看",
			Description: fmt.Sprintf("在极客时间搜索 %q 相关专栏", query),
		}
	}
}

func cleanHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTagPattern.ReplaceAllString(s, "")))
}

// formatPlays 10000 以上显示为 X.X万
func formatPlays(raw string) string {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if n >= 10000 {
		return fmt.Sprintf("%.1f万", n/10000)
	}
	return strconv.FormatInt(int64(n), 10)
}

// formatDuration 数字按秒格式化，字符串（如 "12:30"）原样返回
func formatDuration(raw string) string {
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}
	if secs <= 0 {
		return ""
	}
	hours, minutes := secs/3600, (secs%3600)/60
	if hours > 0 {
		return fmt.Sprintf("%d小时%d分钟", hours, minutes)
	}
	return fmt.Sprintf("%d分钟", minutes)
}
