package floorplan

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Rect is the measured bounding box of the floor-plan container.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measured reports whether the rect can be used for clamping.
func (r *Rect) Measured() bool {
	if r == nil {
		return false
	}
	for _, v := range []float64{r.Left, r.Top, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.Width > 0 && r.Height > 0
}

type DragPhase string

const (
	PhaseIdle     DragPhase = "idle"
	PhaseDragging DragPhase = "dragging"
)

// DragState is either idle or dragging one table with a fixed grab offset.
// The zero value is idle.
type DragState struct {
	phase   DragPhase
	tableID string
	offset  Point
}

func dragging(tableID string, offset Point) DragState {
	return DragState{phase: PhaseDragging, tableID: tableID, offset: offset}
}

func (s DragState) Phase() DragPhase {
	if s.phase == "" {
		return PhaseIdle
	}
	return s.phase
}

func (s DragState) Dragging() bool {
	return s.phase == PhaseDragging
}

// Target returns the dragged table id and grab offset; ok is false when idle.
func (s DragState) Target() (tableID string, offset Point, ok bool) {
	if !s.Dragging() {
		return "", Point{}, false
	}
	return s.tableID, s.offset, true
}

// DragController turns pointer events into table positions.
type DragController struct {
	state DragState
}

func (c *DragController) State() DragState {
	return c.state
}

// Press starts dragging tableID. elementOrigin is the table's on-screen top
// left corner at press time. A press while already dragging replaces the target.
func (c *DragController) Press(tableID string, pointer, elementOrigin Point) {
	c.state = dragging(tableID, pointer.Sub(elementOrigin))
}

// Move repositions the dragged table and returns the resulting registry and
// whether it changed. Moves while idle, moves without a measured container
// and moves for a table no longer in the registry leave it untouched.
func (c *DragController) Move(reg *Registry, pointer Point, container *Rect) (*Registry, bool) {
	id, offset, ok := c.state.Target()
	if !ok || !container.Measured() {
		return reg, false
	}
	if math.IsNaN(pointer.X) || math.IsNaN(pointer.Y) {
		return reg, false
	}
	next := reg.Update(id, func(t Table) Table {
		t.PositionX = Clamp(pointer.X-container.Left-offset.X, container.Width-t.Width)
		t.PositionY = Clamp(pointer.Y-container.Top-offset.Y, container.Height-t.Height)
		return t
	})
	return next, next != reg
}

func (c *DragController) Release() {
	c.state = DragState{}
}

// Leave is an implicit release when the pointer exits the container.
func (c *DragController) Leave() {
	c.Release()
}

// Clamp bounds v to [0, limit]. A negative limit, a table larger than its
// container, pins the value to 0.
func Clamp(v, limit float64) float64 {
	return math.Max(0, math.Min(v, limit))
}
