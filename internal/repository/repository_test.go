package repository

import (
	"errors"
	"testing"
	"time"
	"zhitu_backend/internal/model"
	"zhitu_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 每个连接是独立的内存库
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPath(t *testing.T, db *gorm.DB, userID uint, position string) *model.LearningPath {
	t.Helper()
	p := &model.LearningPath{UserID: userID, Position: position}
	p.GeneratedContent.Output = "# " + position
	p.GeneratedContent.MarkGenerated(model.ContentMindmap)
	if err := NewLearningPathRepository(db).Create(p); err != nil {
		t.Fatalf("create path: %v", err)
	}
	return p
}

func seedQuestions(t *testing.T, db *gorm.DB, pathID uint, n int) []model.InterviewQuestion {
	t.Helper()
	qs := make([]model.InterviewQuestion, n)
	for i := range qs {
		qs[i] = model.InterviewQuestion{
			LearningPathID:  pathID,
			Question:        "问题" + string(rune('A'+i)),
			Answer:          "答案",
			Category:        "基础",
			Difficulty:      model.DifficultyMedium,
			KnowledgePoints: []string{"并发"},
		}
	}
	if err := NewInterviewQuestionRepository(db).CreateBatch(qs); err != nil {
		t.Fatalf("create questions: %v", err)
	}
	return qs
}

func TestSaveContentRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewLearningPathRepository(db)
	p := seedPath(t, db, 1, "Go后端")

	p.GeneratedContent.MergeResources(model.ContentBooks, []model.ResourceItem{{Title: "Go语言圣经", URL: "https://book.douban.com/subject/27044219/"}})
	p.GeneratedContent.AdvanceCursor(model.ContentBooks, 1)
	p.GeneratedContent.MarkGenerated(model.ContentBooks)
	if err := repo.SaveContent(p); err != nil {
		t.Fatalf("SaveContent: %v", err)
	}

	got, err := repo.FindByIDForUser(p.ID, 1)
	if err != nil {
		t.Fatalf("FindByIDForUser: %v", err)
	}
	gc := got.GeneratedContent
	if gc.Output != "# Go后端" || gc.Cursor(model.ContentBooks) != 1 || len(gc.Books) != 1 {
		t.Fatalf("content not persisted: %+v", gc)
	}
	if !gc.HasGenerated(model.ContentMindmap) || !gc.HasGenerated(model.ContentBooks) {
		t.Errorf("generated_types = %v", gc.GeneratedTypes)
	}

	if _, err := repo.FindByIDForUser(p.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("other user's path visible: %v", err)
	}
	other := *got
	other.UserID = 2
	if err := repo.SaveContent(&other); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("SaveContent for wrong owner = %v", err)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewLearningPathRepository(db)
	seedPath(t, db, 1, "A")
	seedPath(t, db, 1, "B")
	seedPath(t, db, 2, "C")

	paths, total, err := repo.ListByUser(1, 1, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 2 || len(paths) != 2 || paths[0].Position != "B" {
		t.Errorf("paths = %+v total=%d", paths, total)
	}
}

func TestDeleteCascade(t *testing.T) {
	db := newTestDB(t)
	paths := NewLearningPathRepository(db)
	statuses := NewQuestionStatusRepository(db)
	sessions := NewInterviewSessionRepository(db)
	progress := NewProgressRepository(db)

	doomed := seedPath(t, db, 1, "删除")
	kept := seedPath(t, db, 1, "保留")
	dq := seedQuestions(t, db, doomed.ID, 2)
	kq := seedQuestions(t, db, kept.ID, 1)

	now := time.Now()
	for _, q := range append(dq, kq...) {
		if _, err := statuses.Upsert(1, q.ID, model.StatusNotMastered, now); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	yes := true
	progress.Mark(1, doomed.ID, "books:0", "books", &yes, nil)
	progress.Mark(1, kept.ID, "books:0", "books", &yes, nil)

	pid := doomed.ID
	s := &model.InterviewSession{UserID: 1, LearningPathID: &pid, Position: "删除", Status: model.SessionInProgress, StartedAt: now}
	if err := sessions.Create(s); err != nil {
		t.Fatalf("create session: %v", err)
	}

	if err := paths.DeleteCascade(doomed.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("delete by non-owner = %v", err)
	}
	if err := paths.DeleteCascade(doomed.ID, 1); err != nil {
		t.Fatalf("DeleteCascade: %v", err)
	}

	var n int64
	db.Model(&model.InterviewQuestion{}).Where("learning_path_id = ?", doomed.ID).Count(&n)
	if n != 0 {
		t.Errorf("questions left: %d", n)
	}
	db.Model(&model.QuestionStatus{}).Count(&n)
	if n != 1 {
		t.Errorf("statuses left = %d, want only the kept path's", n)
	}
	db.Model(&model.LearningProgress{}).Count(&n)
	if n != 1 {
		t.Errorf("progress rows left = %d, want 1", n)
	}
	got, err := sessions.FindByIDForUser(s.ID, 1)
	if err != nil {
		t.Fatalf("session removed: %v", err)
	}
	if got.LearningPathID != nil {
		t.Errorf("session still linked to deleted path")
	}
	if _, err := paths.FindByIDForUser(doomed.ID, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("path still visible: %v", err)
	}

	mistakes, err := NewInterviewQuestionRepository(db).ListMistakes(1, 0)
	if err != nil {
		t.Fatalf("ListMistakes: %v", err)
	}
	if len(mistakes) != 1 || mistakes[0].Position != "保留" {
		t.Errorf("mistakes = %+v", mistakes)
	}
}

func TestQuestionStatusUpsertCountsReviews(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionStatusRepository(db)
	p := seedPath(t, db, 1, "Go")
	q := seedQuestions(t, db, p.ID, 1)[0]

	steps := []model.QuestionState{model.StatusMastered, model.StatusNotMastered, model.StatusMastered}
	for i, st := range steps {
		got, err := repo.Upsert(1, q.ID, st, time.Now())
		if err != nil {
			t.Fatalf("Upsert %d: %v", i, err)
		}
		if got.ReviewCount != i+1 || got.Status != st {
			t.Fatalf("step %d: review_count=%d status=%s", i, got.ReviewCount, got.Status)
		}
		if got.LastReviewedAt == nil {
			t.Fatalf("step %d: last_reviewed_at not set", i)
		}
	}

	var rows int64
	db.Model(&model.QuestionStatus{}).Count(&rows)
	if rows != 1 {
		t.Errorf("rows = %d, want a single status row", rows)
	}
}

func TestListWithStatus(t *testing.T) {
	db := newTestDB(t)
	questions := NewInterviewQuestionRepository(db)
	statuses := NewQuestionStatusRepository(db)
	p := seedPath(t, db, 1, "Go")
	qs := seedQuestions(t, db, p.ID, 3)

	statuses.Upsert(1, qs[0].ID, model.StatusMastered, time.Now())
	statuses.Upsert(1, qs[1].ID, model.StatusNotMastered, time.Now())
	statuses.Upsert(2, qs[2].ID, model.StatusMastered, time.Now())

	all, err := questions.ListWithStatus(p.ID, 1, "all")
	if err != nil {
		t.Fatalf("ListWithStatus: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d", len(all))
	}
	if all[2].Status != model.StatusNotSeen || all[2].ReviewCount != 0 {
		t.Errorf("another user's status leaked: %+v", all[2])
	}
	if len(all[0].KnowledgePoints) != 1 || all[0].KnowledgePoints[0] != "并发" {
		t.Errorf("knowledge points = %v", all[0].KnowledgePoints)
	}

	tests := map[string]int{
		string(model.StatusMastered):    1,
		string(model.StatusNotMastered): 1,
		string(model.StatusNotSeen):     1,
	}
	for status, want := range tests {
		rows, err := questions.ListWithStatus(p.ID, 1, status)
		if err != nil {
			t.Fatalf("%s: %v", status, err)
		}
		if len(rows) != want {
			t.Errorf("%s: got %d rows, want %d", status, len(rows), want)
		}
	}
}

func TestSessionCompleteOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewInterviewSessionRepository(db)
	s := &model.InterviewSession{UserID: 1, Position: "Go", Status: model.SessionInProgress, StartedAt: time.Now()}
	s.Conversation = append(s.Conversation, model.Turn{Role: model.TurnSystem, Content: "sys"})
	if err := repo.Create(s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	s.Conversation = append(s.Conversation, model.Turn{Role: model.TurnUser, Content: "回答"})
	if err := repo.SaveConversation(s); err != nil {
		t.Fatalf("SaveConversation: %v", err)
	}

	first := *s
	ended := time.Now()
	first.Status = model.SessionCompleted
	first.EndedAt = &ended
	first.Evaluation = &model.Evaluation{OverallScore: 88, Summary: "第一次"}
	ok, err := repo.Complete(&first)
	if err != nil || !ok {
		t.Fatalf("Complete = %v, %v", ok, err)
	}

	second := first
	second.Evaluation = &model.Evaluation{OverallScore: 10, Summary: "第二次"}
	ok, err = repo.Complete(&second)
	if err != nil || ok {
		t.Fatalf("second Complete = %v, %v; want no-op", ok, err)
	}
	if err := repo.SaveConversation(s); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("conversation saved on completed session: %v", err)
	}

	got, _ := repo.FindByIDForUser(s.ID, 1)
	if got.Evaluation == nil || got.Evaluation.OverallScore != 88 || len(got.Conversation) != 2 {
		t.Errorf("stored session = %+v", got)
	}

	list, err := repo.ListCompleted(1, 10)
	if err != nil || len(list) != 1 {
		t.Errorf("ListCompleted = %d, %v", len(list), err)
	}
}

func TestProgressMarkAndCounts(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	yes, no := true, false

	repo.Mark(1, 1, "books:0", "books", &yes, nil)
	repo.Mark(1, 1, "books:1", "books", nil, &yes)
	repo.Mark(1, 2, "courses:0", "courses", &yes, &yes)
	p, err := repo.Mark(1, 1, "books:0", "", &no, &yes)
	if err != nil {
		t.Fatalf("Mark: %v", err)
	}
	if p.Mastered || !p.NeedsReview || p.ContentType != "books" {
		t.Errorf("updated row = %+v", p)
	}

	all, err := repo.Counts(1, 0)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if all.Total != 3 || all.Mastered != 1 || all.NeedsReview != 3 {
		t.Errorf("all = %+v", all)
	}
	one, _ := repo.Counts(1, 1)
	if one.Total != 2 || one.Mastered != 0 {
		t.Errorf("path 1 = %+v", one)
	}
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	u := &model.User{Name: "张三", Email: "a@b.com", Password: "x", Role: model.RoleUser}
	if err := repo.Create(u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(&model.User{Name: "dup", Email: "a@b.com", Password: "x"}); err == nil {
		t.Error("duplicate email accepted")
	}

	if err := repo.SetDisabled(u.ID, true); err != nil {
		t.Fatalf("SetDisabled: %v", err)
	}
	if err := repo.SetDisabled(999, true); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("SetDisabled missing user = %v", err)
	}
	got, _ := repo.FindByEmail("a@b.com")
	if !got.Disabled {
		t.Error("user not disabled")
	}

	users, total, err := repo.List(1, 10)
	if err != nil || total != 1 || len(users) != 1 {
		t.Errorf("List = %d/%d, %v", len(users), total, err)
	}
}
