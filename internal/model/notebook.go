package model

// DefaultNotebookName 删除自定义笔记本时，笔记移入该默认笔记本
const DefaultNotebookName = "日常笔记"

// swagger:model Notebook
type Notebook struct {
	BaseModel
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Icon        string `gorm:"size:50;default:'📚'" json:"icon"`
	IsDefault   bool   `gorm:"default:false" json:"is_default"`
	NoteCount   int64  `gorm:"->;-:migration" json:"note_count"`
}

func (Notebook) TableName() string {
	return "notebooks"
}

// DefaultNotebooks 每个用户首次访问笔记本时补齐
func DefaultNotebooks(userID uint) []Notebook {
	return []Notebook{
		{UserID: userID, Name: "面试笔记", Description: "记录面试题目和解析", Icon: "📚", IsDefault: true},
		{UserID: userID, Name: "错题本", Description: "记录错题和薄弱知识点", Icon: "📝", IsDefault: true},
		{UserID: userID, Name: "学习笔记", Description: "记录学习路线和知识点", Icon: "📖", IsDefault: true},
		{UserID: userID, Name: DefaultNotebookName, Description: "记录日常想法和总结", Icon: "📅", IsDefault: true},
	}
}
