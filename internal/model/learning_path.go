package model

// swagger:model LearningPath
type LearningPath struct {
	BaseModel
	UserID           uint             `gorm:"index;not null" json:"user_id"`
	Position         string           `gorm:"size:200;not null" json:"position"`
	JobDescription   string           `gorm:"type:text" json:"job_description"`
	GeneratedContent GeneratedContent `json:"generated_content"`
}

func (LearningPath) TableName() string {
	return "learning_paths"
}
