package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yeremiapane/restaurant-admin/floorplan"
)

// SeedFile is the YAML document read by the seed command:
//
//	admin:
//	  name: Owner
//	  email: owner@example.com
//	  password: secret123
//	tables:
//	  - number: 1
//	    shape: square
//	    seats: 4
//	    x: 50
//	    y: 50
type SeedFile struct {
	Admin  *SeedUser   `yaml:"admin"`
	Tables []SeedTable `yaml:"tables"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type SeedTable struct {
	ID     string  `yaml:"id"`
	Number int     `yaml:"number"`
	Shape  string  `yaml:"shape"`
	Seats  int     `yaml:"seats"`
	Status string  `yaml:"status"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

func LoadSeedFile(path string) (SeedFile, error) {
	var seed SeedFile
	b, err := os.ReadFile(path)
	if err != nil {
		return seed, fmt.Errorf("read seed file: %w", err)
	}
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return seed, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if seed.Admin != nil && (seed.Admin.Email == "" || seed.Admin.Password == "") {
		return seed, errors.New("seed admin needs email and password")
	}
	return seed, nil
}

// FloorPlan converts the seed tables, filling ids, numbers and defaults the
// same way the Add Table dialog does.
func (s SeedFile) FloorPlan(newID floorplan.IDFunc) ([]floorplan.Table, error) {
	if newID == nil {
		newID = floorplan.NewID
	}

	tables := make([]floorplan.Table, 0, len(s.Tables))
	next := 1
	for i, st := range s.Tables {
		t := floorplan.Table{
			ID:        st.ID,
			Number:    st.Number,
			Shape:     floorplan.Shape(st.Shape),
			Seats:     st.Seats,
			Status:    floorplan.Status(st.Status),
			PositionX: st.X,
			PositionY: st.Y,
			Width:     st.Width,
			Height:    st.Height,
		}
		if t.ID == "" {
			t.ID = newID()
		}
		if t.Number == 0 {
			t.Number = next
		}
		if t.Number >= next {
			next = t.Number + 1
		}
		if t.Shape == "" {
			t.Shape = floorplan.ShapeSquare
		}
		if t.Status == "" {
			t.Status = floorplan.StatusAvailable
		}
		if t.Width == 0 {
			t.Width = floorplan.DefaultWidth
		}
		if t.Height == 0 {
			t.Height = floorplan.DefaultHeight
		}
		if !t.Shape.Valid() || !t.Status.Valid() || t.Seats < 0 || t.Width <= 0 || t.Height <= 0 {
			return nil, fmt.Errorf("seed table %d: invalid shape, status, seats or size", i+1)
		}
		tables = append(tables, t)
	}
	return tables, nil
}
