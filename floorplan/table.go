package floorplan

import (
	"github.com/google/uuid"
)

type Shape string

const (
	ShapeSquare    Shape = "square"
	ShapeCircle    Shape = "circle"
	ShapeRectangle Shape = "rectangle"
)

func (s Shape) Valid() bool {
	switch s {
	case ShapeSquare, ShapeCircle, ShapeRectangle:
		return true
	}
	return false
}

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusOccupied  Status = "occupied"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusOccupied:
		return true
	}
	return false
}

// Defaults applied by CommitAdd when the draft leaves a field out.
const (
	DefaultPositionX = 100
	DefaultPositionY = 100
	DefaultWidth     = 80
	DefaultHeight    = 80
)

// Table is one seating unit on the floor plan. PositionX/PositionY are the
// top-left offset inside the floor-plan container, in pixels.
type Table struct {
	ID        string  `json:"id"`
	Number    int     `json:"number"`
	Shape     Shape   `json:"shape"`
	Seats     int     `json:"seats"`
	Status    Status  `json:"status"`
	PositionX float64 `json:"positionX"`
	PositionY float64 `json:"positionY"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Number    *int     `json:"number,omitempty"`
	Shape     *Shape   `json:"shape,omitempty"`
	Seats     *int     `json:"seats,omitempty"`
	Status    *Status  `json:"status,omitempty"`
	PositionX *float64 `json:"positionX,omitempty"`
	PositionY *float64 `json:"positionY,omitempty"`
	Width     *float64 `json:"width,omitempty"`
	Height    *float64 `json:"height,omitempty"`
}

// Apply returns a copy of t with the patch fields set.
func (p Patch) Apply(t Table) Table {
	if p.Number != nil {
		t.Number = *p.Number
	}
	if p.Shape != nil {
		t.Shape = *p.Shape
	}
	if p.Seats != nil {
		t.Seats = *p.Seats
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.PositionX != nil {
		t.PositionX = *p.PositionX
	}
	if p.PositionY != nil {
		t.PositionY = *p.PositionY
	}
	if p.Width != nil {
		t.Width = *p.Width
	}
	if p.Height != nil {
		t.Height = *p.Height
	}
	return t
}

func (p Patch) Validate() error {
	verr := &ValidationError{}
	if p.Number != nil && *p.Number < 1 {
		verr.Add("number", "must be at least 1")
	}
	if p.Shape != nil && !p.Shape.Valid() {
		verr.Add("shape", "must be one of square, circle, rectangle")
	}
	if p.Seats != nil && *p.Seats < 0 {
		verr.Add("seats", "cannot be negative")
	}
	if p.Status != nil && !p.Status.Valid() {
		verr.Add("status", "must be one of available, reserved, occupied")
	}
	if p.PositionX != nil && *p.PositionX < 0 {
		verr.Add("positionX", "cannot be negative")
	}
	if p.PositionY != nil && *p.PositionY < 0 {
		verr.Add("positionY", "cannot be negative")
	}
	if p.Width != nil && *p.Width <= 0 {
		verr.Add("width", "must be greater than 0")
	}
	if p.Height != nil && *p.Height <= 0 {
		verr.Add("height", "must be greater than 0")
	}
	return verr.OrNil()
}

// Draft carries the Add Table form. Seats is the only required field; the
// rest fall back to the defaults above.
type Draft struct {
	Number *int     `json:"number,omitempty"`
	Shape  Shape    `json:"shape,omitempty"`
	Seats  *int     `json:"seats,omitempty"`
	Status Status   `json:"status,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

func (d Draft) Validate() error {
	verr := &ValidationError{}
	if d.Seats == nil {
		verr.Add("seats", "is required")
	} else if *d.Seats < 0 {
		verr.Add("seats", "cannot be negative")
	}
	if d.Number != nil && *d.Number < 1 {
		verr.Add("number", "must be at least 1")
	}
	if d.Shape != "" && !d.Shape.Valid() {
		verr.Add("shape", "must be one of square, circle, rectangle")
	}
	if d.Status != "" && !d.Status.Valid() {
		verr.Add("status", "must be one of available, reserved, occupied")
	}
	if d.Width != nil && *d.Width <= 0 {
		verr.Add("width", "must be greater than 0")
	}
	if d.Height != nil && *d.Height <= 0 {
		verr.Add("height", "must be greater than 0")
	}
	return verr.OrNil()
}

// IDFunc produces table ids. The default is time ordered.
type IDFunc func() string

func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
