package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-admin/floorplan"
	"github.com/yeremiapane/restaurant-admin/models"
)

// FloorPlanStore persists whole registry snapshots. A save replaces the
// stored floor plan with the snapshot inside one transaction.
type FloorPlanStore struct {
	DB *gorm.DB
}

func NewFloorPlanStore(db *gorm.DB) *FloorPlanStore {
	return &FloorPlanStore{DB: db}
}

func (s *FloorPlanStore) Load(ctx context.Context) (*floorplan.Registry, error) {
	var rows []models.Table
	if err := s.DB.WithContext(ctx).Order("position asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load floor tables: %w", err)
	}

	tables := make([]floorplan.Table, 0, len(rows))
	for _, row := range rows {
		tables = append(tables, ToDomain(row))
	}
	return floorplan.NewRegistry(tables...)
}

func (s *FloorPlanStore) Save(ctx context.Context, reg *floorplan.Registry) error {
	tables := reg.All()
	now := time.Now()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Table
		if err := tx.Select("id", "created_at").Find(&existing).Error; err != nil {
			return fmt.Errorf("read floor tables: %w", err)
		}
		created := make(map[string]time.Time, len(existing))
		for _, row := range existing {
			created[row.ID] = row.CreatedAt
		}

		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Table{}).Error; err != nil {
			return fmt.Errorf("clear floor tables: %w", err)
		}
		if len(tables) == 0 {
			return nil
		}

		rows := make([]models.Table, 0, len(tables))
		for i, t := range tables {
			row := FromDomain(t, i)
			row.CreatedAt = now
			if at, ok := created[t.ID]; ok {
				row.CreatedAt = at
			}
			row.UpdatedAt = now
			rows = append(rows, row)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("write floor tables: %w", err)
		}
		return nil
	})
}

func ToDomain(row models.Table) floorplan.Table {
	return floorplan.Table{
		ID:        row.ID,
		Number:    row.Number,
		Shape:     floorplan.Shape(row.Shape),
		Seats:     row.Seats,
		Status:    floorplan.Status(row.Status),
		PositionX: row.PositionX,
		PositionY: row.PositionY,
		Width:     row.Width,
		Height:    row.Height,
	}
}

func FromDomain(t floorplan.Table, position int) models.Table {
	return models.Table{
		ID:        t.ID,
		Position:  position,
		Number:    t.Number,
		Shape:     string(t.Shape),
		Seats:     t.Seats,
		Status:    string(t.Status),
		PositionX: t.PositionX,
		PositionY: t.PositionY,
		Width:     t.Width,
		Height:    t.Height,
	}
}
