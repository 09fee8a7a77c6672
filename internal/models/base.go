package models

import "time"

// BaseModel is embedded by every entity. It deliberately omits a soft-delete
// column: deletes must be hard so the foreign key cascade and set-null rules
// in the schema actually fire.
type BaseModel struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
