package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"zhitu_backend/internal/llm"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"

	"gorm.io/datatypes"
)

const (
	defaultQuestionCount = 20
	maxQuestionCount     = 100
	maxWeakPointCount    = 50
	weakPointsInPrompt   = 5
	topWeakCategories    = 5
	topWeakPoints        = 10
)

const questionSystemPrompt = "你是一个专业的面试题生成专家。你必须严格按照要求返回纯JSON格式的面试题，不要添加任何其他文字或markdown格式。每道题的答案要简洁明了，控制在150字以内。"

const questionJSONFormat = `{
  "questions": [
    {
      "question": "题目内容",
      "answer": "详细的参考答案",
      "category": "技术基础/项目经验/行为面试/算法设计/系统架构等",
      "difficulty": "easy/medium/hard",
      "knowledge_points": ["知识点1", "知识点2"]
    }
  ]
}`

type InterviewService struct {
	PathRepo     *repository.LearningPathRepository
	QuestionRepo *repository.InterviewQuestionRepository
	StatusRepo   *repository.QuestionStatusRepository
	Storage      *StorageService
	LLM          llm.Completer
	now          func() time.Time
}

func NewInterviewService(
	pathRepo *repository.LearningPathRepository,
	questionRepo *repository.InterviewQuestionRepository,
	statusRepo *repository.QuestionStatusRepository,
	storage *StorageService,
	c llm.Completer,
) *InterviewService {
	return &InterviewService{
		PathRepo:     pathRepo,
		QuestionRepo: questionRepo,
		StatusRepo:   statusRepo,
		Storage:      storage,
		LLM:          c,
		now:          time.Now,
	}
}

type GenerateQuestionsInput struct {
	LearningPathID uint   `json:"learning_path_id" binding:"required"`
	Count          int    `json:"count"`
	Category       string `json:"category"`
}

type WeakCategory struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type WeakPoint struct {
	Point string `json:"point"`
	Count int    `json:"count"`
}

// InterviewStatistics 刷题统计，掌握率 = 已掌握 / 已做过 × 100
type InterviewStatistics struct {
	Total               int            `json:"total"`
	NotSeen             int            `json:"not_seen"`
	Mastered            int            `json:"mastered"`
	NotMastered         int            `json:"not_mastered"`
	MasteryRate         float64        `json:"mastery_rate"`
	WeakCategories      []WeakCategory `json:"weak_categories"`
	WeakKnowledgePoints []WeakPoint    `json:"weak_knowledge_points"`
}

type QuestionList struct {
	Questions  []model.QuestionWithStatus `json:"questions"`
	Statistics *InterviewStatistics       `json:"statistics"`
	Total      int                        `json:"total"`
}

type ExportResult struct {
	URL   string `json:"url"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type generatedQuestion struct {
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	Category        string   `json:"category"`
	Difficulty      string   `json:"difficulty"`
	KnowledgePoints []string `json:"knowledge_points"`
}

func (s *InterviewService) ownedPath(userID, pathID uint) (*model.LearningPath, error) {
	path, err := s.PathRepo.FindByIDForUser(pathID, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrLearningPathNotFound)
	}
	return path, nil
}

// GenerateQuestions 为学习路线生成题库
func (s *InterviewService) GenerateQuestions(ctx context.Context, userID uint, in GenerateQuestionsInput) ([]model.InterviewQuestion, error) {
	count := in.Count
	if count == 0 {
		count = defaultQuestionCount
	}
	if count < 1 || count > maxQuestionCount {
		return nil, util.NewValidation(fmt.Sprintf("题目数量需在1到%d之间", maxQuestionCount))
	}

	path, err := s.ownedPath(userID, in.LearningPathID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, path, count, normalQuestionPrompt(path.Position, strings.TrimSpace(in.Category), count))
}

// GenerateWeakPointQuestions 针对未掌握题目中出现最多的知识点出题
func (s *InterviewService) GenerateWeakPointQuestions(ctx context.Context, userID, pathID uint, count int) ([]model.InterviewQuestion, error) {
	if count == 0 {
		count = defaultQuestionCount
	}
	if count < 1 || count > maxWeakPointCount {
		return nil, util.NewValidation(fmt.Sprintf("题目数量需在1到%d之间", maxWeakPointCount))
	}

	path, err := s.ownedPath(userID, pathID)
	if err != nil {
		return nil, err
	}
	rows, err := s.QuestionRepo.ListWithStatus(pathID, userID, string(model.StatusNotMastered))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.NewValidation("暂无薄弱点数据，请先完成一些题目")
	}

	_, points := weakSpots(rows)
	names := make([]string, 0, weakPointsInPrompt)
	for i := 0; i < len(points) && i < weakPointsInPrompt; i++ {
		names = append(names, points[i].Point)
	}
	if len(names) == 0 {
		// 未掌握的题目都没有标注知识点时按分类出题
		cats, _ := weakSpots(rows)
		for i := 0; i < len(cats) && i < weakPointsInPrompt; i++ {
			names = append(names, cats[i].Category)
		}
	}
	return s.generate(ctx, path, count, weakPointPrompt(path.Position, names, count))
}

func normalQuestionPrompt(position, category string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请为\"%s\"职位生成%d道面试题。\n\n", position, count)
	b.WriteString("要求：\n1. **必须**返回纯JSON格式，不要markdown代码块，不要其他文字说明\n2. 题目要专业、实用、有针对性\n3. 涵盖技术基础、项目经验、行为面试等多种类型\n4. 每题包含详细的参考答案\n5. 标注题目类别和难度\n6. 提取关键知识点\n")
	if category != "" {
		fmt.Fprintf(&b, "7. 重点生成【%s】类型的题目\n", category)
	}
	b.WriteString("\n**直接返回以下JSON格式（不要用```json包裹，不要其他文字）：**\n\n")
	b.WriteString(questionJSONFormat)
	return b.String()
}

func weakPointPrompt(position string, points []string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请为\"%s\"职位生成%d道面试题。\n\n", position, count)
	fmt.Fprintf(&b, "用户在以下知识点上较为薄弱，请针对性出题：\n%s\n\n", strings.Join(points, "、"))
	b.WriteString("要求：\n1. **必须**返回纯JSON格式，不要markdown代码块，不要其他文字说明\n2. 题目重点考察上述薄弱知识点\n3. 从基础到进阶，循序渐进\n4. 每题包含详细解答和知识点分析\n5. 帮助用户巩固薄弱环节\n")
	b.WriteString("\n**直接返回以下JSON格式（不要用```json包裹，不要其他文字）：**\n\n")
	b.WriteString(questionJSONFormat)
	return b.String()
}

func (s *InterviewService) generate(ctx context.Context, path *model.LearningPath, count int, prompt string) ([]model.InterviewQuestion, error) {
	raw, err := s.LLM.Complete(ctx, llm.Request{
		Purpose:     "interview_questions",
		System:      questionSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   10000,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Questions []generatedQuestion `json:"questions"`
	}
	if err := llm.ExtractJSON(raw, &parsed); err != nil {
		return nil, err
	}

	questions := make([]model.InterviewQuestion, 0, count)
	for _, q := range parsed.Questions {
		if len(questions) == count {
			break
		}
		text := strings.TrimSpace(q.Question)
		if text == "" {
			continue
		}
		points := q.KnowledgePoints
		if points == nil {
			points = []string{}
		}
		questions = append(questions, model.InterviewQuestion{
			LearningPathID:  path.ID,
			Question:        text,
			Answer:          strings.TrimSpace(q.Answer),
			Category:        strings.TrimSpace(q.Category),
			Difficulty:      model.NormalizeDifficulty(q.Difficulty),
			KnowledgePoints: datatypes.JSONSlice[string](points),
		})
	}
	if len(questions) == 0 {
		return nil, util.NewMalformed("AI未返回有效的面试题", nil)
	}

	if err := s.QuestionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ListQuestions status 可选 all / not_seen / mastered / not_mastered
func (s *InterviewService) ListQuestions(userID, pathID uint, status string) (*QuestionList, error) {
	status = strings.TrimSpace(status)
	if status != "" && status != "all" && !model.QuestionState(status).Valid() {
		return nil, util.NewValidation("无效的题目状态")
	}
	if _, err := s.ownedPath(userID, pathID); err != nil {
		return nil, err
	}

	all, err := s.QuestionRepo.ListWithStatus(pathID, userID, "")
	if err != nil {
		return nil, err
	}

	filtered := all
	if status != "" && status != "all" {
		filtered = make([]model.QuestionWithStatus, 0, len(all))
		for _, q := range all {
			if string(q.Status) == status {
				filtered = append(filtered, q)
			}
		}
	}
	return &QuestionList{
		Questions:  filtered,
		Statistics: buildStatistics(all),
		Total:      len(filtered),
	}, nil
}

// UpdateStatus 每次调用 review_count 加一，不论状态是否变化
func (s *InterviewService) UpdateStatus(userID, questionID uint, status string) (*model.QuestionStatus, error) {
	state := model.QuestionState(strings.TrimSpace(status))
	if !state.Valid() {
		return nil, util.NewValidation("无效的题目状态")
	}

	q, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrQuestionNotFound)
	}
	// 题目所属路线不属于当前用户时同样按不存在处理
	if _, err := s.PathRepo.FindByIDForUser(q.LearningPathID, userID); err != nil {
		return nil, notFoundAs(err, util.ErrQuestionNotFound)
	}
	return s.StatusRepo.Upsert(userID, questionID, state, s.now())
}

func (s *InterviewService) Statistics(userID, pathID uint) (*InterviewStatistics, error) {
	if _, err := s.ownedPath(userID, pathID); err != nil {
		return nil, err
	}
	rows, err := s.QuestionRepo.ListWithStatus(pathID, userID, "")
	if err != nil {
		return nil, err
	}
	return buildStatistics(rows), nil
}

// Mistakes pathID 为 0 时返回所有路线的错题
func (s *InterviewService) Mistakes(userID, pathID uint) ([]model.QuestionWithStatus, error) {
	if pathID > 0 {
		if _, err := s.ownedPath(userID, pathID); err != nil {
			return nil, err
		}
	}
	return s.QuestionRepo.ListMistakes(userID, pathID)
}

// ExportMistakes 错题导出为 CSV 并上传到存储
func (s *InterviewService) ExportMistakes(ctx context.Context, userID, pathID uint) (*ExportResult, error) {
	rows, err := s.Mistakes(userID, pathID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, util.NewValidation("暂无错题可导出")
	}

	data, err := mistakesCSV(rows)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("exports/mistakes/%d/%s_%s.csv", userID, s.now().Format("20060102"), model.GenerateUUID())
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), util.MimeCSV)
	if err != nil {
		return nil, err
	}
	return &ExportResult{URL: url, Key: key, Count: len(rows)}, nil
}

func mistakesCSV(rows []model.QuestionWithStatus) ([]byte, error) {
	var buf bytes.Buffer
	// BOM 让 Excel 正确识别 UTF-8
	buf.WriteString("\ufeff")
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"职位", "题目", "参考答案", "类别", "难度", "知识点", "复习次数", "最后复习时间"}); err != nil {
		return nil, err
	}
	for _, q := range rows {
		last := ""
		if q.LastReviewedAt != nil {
			last = q.LastReviewedAt.Format(util.TimeFormat)
		}
		record := []string{
			q.Position,
			q.Question,
			q.Answer,
			q.Category,
			string(q.Difficulty),
			strings.Join(q.KnowledgePoints, "、"),
			strconv.Itoa(q.ReviewCount),
			last,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildStatistics(rows []model.QuestionWithStatus) *InterviewStatistics {
	st := &InterviewStatistics{
		Total:               len(rows),
		WeakCategories:      []WeakCategory{},
		WeakKnowledgePoints: []WeakPoint{},
	}
	var weak []model.QuestionWithStatus
	for _, q := range rows {
		switch q.Status {
		case model.StatusMastered:
			st.Mastered++
		case model.StatusNotMastered:
			st.NotMastered++
			weak = append(weak, q)
		default:
			st.NotSeen++
		}
	}
	if seen := st.Mastered + st.NotMastered; seen > 0 {
		st.MasteryRate = math.Round(float64(st.Mastered)/float64(seen)*1000) / 10
	}

	cats, points := weakSpots(weak)
	if len(cats) > topWeakCategories {
		cats = cats[:topWeakCategories]
	}
	if len(points) > topWeakPoints {
		points = points[:topWeakPoints]
	}
	st.WeakCategories = append(st.WeakCategories, cats...)
	st.WeakKnowledgePoints = append(st.WeakKnowledgePoints, points...)
	return st
}

// weakSpots 按出现次数降序统计分类与知识点，次数相同保持首次出现顺序
func weakSpots(rows []model.QuestionWithStatus) ([]WeakCategory, []WeakPoint) {
	var cats []WeakCategory
	catIdx := map[string]int{}
	var points []WeakPoint
	pointIdx := map[string]int{}

	for _, q := range rows {
		if c := strings.TrimSpace(q.Category); c != "" {
			if i, ok := catIdx[c]; ok {
				cats[i].Count++
			} else {
				catIdx[c] = len(cats)
				cats = append(cats, WeakCategory{Category: c, Count: 1})
			}
		}
		for _, kp := range q.KnowledgePoints {
			kp = strings.TrimSpace(kp)
			if kp == "" {
				continue
			}
			if i, ok := pointIdx[kp]; ok {
				points[i].Count++
			} else {
				pointIdx[kp] = len(points)
				points = append(points, WeakPoint{Point: kp, Count: 1})
			}
		}
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Count > cats[j].Count })
	sort.SliceStable(points, func(i, j int) bool { return points[i].Count > points[j].Count })
	return cats, points
}
