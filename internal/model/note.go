package model

import "gorm.io/datatypes"

type EditorMode string

const (
	EditorMarkdown EditorMode = "markdown"
	EditorRichText EditorMode = "rich_text"
)

// ParseEditorMode 空值按 markdown 处理
func ParseEditorMode(s string) (EditorMode, bool) {
	switch m := EditorMode(s); m {
	case "":
		return EditorMarkdown, true
	case EditorMarkdown, EditorRichText:
		return m, true
	}
	return "", false
}

// swagger:model Note
type Note struct {
	BaseModel
	UserID         uint                        `gorm:"index;not null" json:"user_id"`
	NotebookID     *uint                       `gorm:"index" json:"notebook_id"`
	LearningPathID *uint                       `gorm:"index" json:"learning_path_id"`
	Title          string                      `gorm:"size:200" json:"title"`
	Content        string                      `gorm:"type:text;not null" json:"content"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	EditorMode     EditorMode                  `gorm:"size:20;default:'markdown'" json:"editor_mode"`
}

func (Note) TableName() string {
	return "notes"
}
