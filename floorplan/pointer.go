package floorplan

type PointerType string

const (
	PointerDown  PointerType = "down"
	PointerMove  PointerType = "move"
	PointerUp    PointerType = "up"
	PointerLeave PointerType = "leave"
)

// PointerEvent is one input event from the floor-plan surface. Element is
// the pressed table's on-screen top-left corner; when absent it is derived
// from Container and the table's stored position.
type PointerEvent struct {
	Type      PointerType `json:"type"`
	TableID   string      `json:"table_id,omitempty"`
	Pointer   Point       `json:"pointer"`
	Element   *Point      `json:"element,omitempty"`
	Container *Rect       `json:"container,omitempty"`
}

// HandlePointer feeds ev to the drag controller. moved reports whether the
// registry changed, which only a move while dragging can do.
func (e *Editor) HandlePointer(ev PointerEvent) (moved bool, err error) {
	switch ev.Type {
	case PointerDown:
		t, ok := e.registry.Get(ev.TableID)
		if !ok {
			return false, ErrTableNotFound
		}
		e.drag.Press(t.ID, ev.Pointer, elementOrigin(t, ev))
		return false, nil
	case PointerMove:
		next, changed := e.drag.Move(e.registry, ev.Pointer, ev.Container)
		e.registry = next
		return changed, nil
	case PointerUp:
		e.drag.Release()
		return false, nil
	case PointerLeave:
		e.drag.Leave()
		return false, nil
	}
	return false, ErrUnknownPointerEvent
}

func elementOrigin(t Table, ev PointerEvent) Point {
	if ev.Element != nil {
		return *ev.Element
	}
	origin := Point{X: t.PositionX, Y: t.PositionY}
	if ev.Container.Measured() {
		origin.X += ev.Container.Left
		origin.Y += ev.Container.Top
	}
	return origin
}
