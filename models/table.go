package models

import "time"

// Table is the persisted row of a floor-plan table. Snapshots of the
// in-memory registry are written here; Position keeps insertion order.
type Table struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Position  int       `gorm:"not null;index" json:"position"`
	Number    int       `gorm:"not null" json:"number"`
	Shape     string    `gorm:"type:varchar(20);not null;default:'square'" json:"shape"`
	Seats     int       `gorm:"not null" json:"seats"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	PositionX float64   `gorm:"not null" json:"position_x"`
	PositionY float64   `gorm:"not null" json:"position_y"`
	Width     float64   `gorm:"not null" json:"width"`
	Height    float64   `gorm:"not null" json:"height"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Table) TableName() string {
	return "floor_tables"
}
