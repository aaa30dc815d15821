package service

import (
	"strings"
	"unicode/utf8"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
)

const (
	noteTitleRunes  = 200
	defaultNotePage = 50
	maxTagsPerNote  = 20
)

type NoteService struct {
	Repo      *repository.NoteRepository
	Notebooks *NotebookService
	PathRepo  *repository.LearningPathRepository
}

func NewNoteService(
	repo *repository.NoteRepository,
	notebooks *NotebookService,
	pathRepo *repository.LearningPathRepository,
) *NoteService {
	return &NoteService{Repo: repo, Notebooks: notebooks, PathRepo: pathRepo}
}

type CreateNoteInput struct {
	NotebookID     *uint    `json:"notebook_id"`
	LearningPathID *uint    `json:"learning_path_id"`
	Title          string   `json:"title"`
	Content        string   `json:"content" binding:"required"`
	Tags           []string `json:"tags"`
	EditorMode     string   `json:"editor_mode"`
}

// UpdateNoteInput 字段为 nil 表示不修改
type UpdateNoteInput struct {
	NotebookID *uint     `json:"notebook_id"`
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Tags       *[]string `json:"tags"`
	EditorMode *string   `json:"editor_mode"`
}

// Create 未指定笔记本时放入日常笔记
func (s *NoteService) Create(userID uint, in CreateNoteInput) (*model.Note, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, util.NewValidation("笔记内容不能为空")
	}
	title, err := noteTitle(in.Title)
	if err != nil {
		return nil, err
	}
	mode, ok := model.ParseEditorMode(in.EditorMode)
	if !ok {
		return nil, util.NewValidation("不支持的编辑器模式")
	}
	notebookID, err := s.resolveNotebook(userID, in.NotebookID)
	if err != nil {
		return nil, err
	}
	if in.LearningPathID != nil && *in.LearningPathID > 0 {
		if _, err := s.PathRepo.FindByIDForUser(*in.LearningPathID, userID); err != nil {
			return nil, notFoundAs(err, util.ErrLearningPathNotFound)
		}
	} else {
		in.LearningPathID = nil
	}

	n := &model.Note{
		UserID:         userID,
		NotebookID:     &notebookID,
		LearningPathID: in.LearningPathID,
		Title:          title,
		Content:        in.Content,
		Tags:           normalizeTags(in.Tags),
		EditorMode:     mode,
	}
	if err := s.Repo.Create(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) List(userID uint, f repository.NoteFilter, page, limit int) ([]model.Note, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = defaultNotePage
	}
	f.Tag = strings.TrimSpace(f.Tag)
	return s.Repo.List(userID, f, page, limit)
}

func (s *NoteService) Get(userID, id uint) (*model.Note, error) {
	n, err := s.Repo.FindByIDForUser(id, userID)
	if err != nil {
		return nil, notFoundAs(err, util.ErrNoteNotFound)
	}
	return n, nil
}

func (s *NoteService) Update(userID, id uint, in UpdateNoteInput) (*model.Note, error) {
	n, err := s.Get(userID, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		if n.Title, err = noteTitle(*in.Title); err != nil {
			return nil, err
		}
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, util.NewValidation("笔记内容不能为空")
		}
		n.Content = *in.Content
	}
	if in.Tags != nil {
		n.Tags = normalizeTags(*in.Tags)
	}
	if in.EditorMode != nil {
		mode, ok := model.ParseEditorMode(*in.EditorMode)
		if !ok {
			return nil, util.NewValidation("不支持的编辑器模式")
		}
		n.EditorMode = mode
	}
	if in.NotebookID != nil {
		notebookID, err := s.resolveNotebook(userID, in.NotebookID)
		if err != nil {
			return nil, err
		}
		n.NotebookID = &notebookID
	}
	if err := s.Repo.Update(n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NoteService) Delete(userID, id uint) error {
	n, err := s.Get(userID, id)
	if err != nil {
		return err
	}
	return s.Repo.Delete(n)
}

func (s *NoteService) resolveNotebook(userID uint, id *uint) (uint, error) {
	if id == nil || *id == 0 {
		b, err := s.Notebooks.DefaultNotebook(userID)
		if err != nil {
			return 0, err
		}
		return b.ID, nil
	}
	b, err := s.Notebooks.Repo.FindByIDForUser(*id, userID)
	if err != nil {
		return 0, notFoundAs(err, util.ErrNotebookNotFound)
	}
	return b.ID, nil
}

func noteTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if utf8.RuneCountInString(title) > noteTitleRunes {
		return "", util.NewValidation("笔记标题不能超过200个字符")
	}
	return title, nil
}

// normalizeTags 去空白、去重，保持原顺序
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == maxTagsPerNote {
			break
		}
	}
	return out
}
