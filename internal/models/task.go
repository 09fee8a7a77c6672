package models

import "time"

type Task struct {
	BaseModel

	Title        string `gorm:"not null"`
	Description  string
	Status       string `gorm:"not null;default:todo"`
	Priority     string `gorm:"not null;default:medium"`
	ProjectID    uint   `gorm:"not null;index"`
	AssignedToID *uint  `gorm:"index"`
	DueDate      *time.Time

	// Relationships
	Project    Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments   []Comment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
