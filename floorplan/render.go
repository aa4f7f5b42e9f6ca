package floorplan

import "strconv"

type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	ColorGray   Color = "gray"
)

// Treatment is the visual style of a table status.
type Treatment struct {
	Color      Color  `json:"color"`
	Background string `json:"background"`
	Border     string `json:"border"`
}

func treatment(c Color) Treatment {
	return Treatment{
		Color:      c,
		Background: "bg-" + string(c) + "-100",
		Border:     "border-" + string(c) + "-500",
	}
}

func StatusTreatment(s Status) Treatment {
	switch s {
	case StatusAvailable:
		return treatment(ColorGreen)
	case StatusReserved:
		return treatment(ColorYellow)
	case StatusOccupied:
		return treatment(ColorRed)
	default:
		return treatment(ColorGray)
	}
}

type Geometry string

const (
	GeometryRoundedRect Geometry = "rounded-rect"
	GeometryRound       Geometry = "round"
)

func ShapeGeometry(s Shape) Geometry {
	switch s {
	case ShapeCircle:
		return GeometryRound
	case ShapeSquare, ShapeRectangle:
		return GeometryRoundedRect
	default:
		return GeometryRoundedRect
	}
}

type TableView struct {
	Table
	Treatment Treatment `json:"treatment"`
	Geometry  Geometry  `json:"geometry"`
	Selected  bool      `json:"selected"`
	Dragging  bool      `json:"dragging"`
	SeatLabel string    `json:"seat_label"`
}

type View struct {
	Version    uint64      `json:"version"`
	Tables     []TableView `json:"tables"`
	SelectedID string      `json:"selected_id,omitempty"`
	Dialog     Dialog      `json:"dialog,omitempty"`
	DragPhase  DragPhase   `json:"drag_phase"`
}

// Render projects the editor state into a read-only view.
func Render(e *Editor) View {
	dragID, _, _ := e.Drag().Target()
	tables := e.registry.All()

	v := View{
		Version:    e.registry.Version(),
		Tables:     make([]TableView, 0, len(tables)),
		SelectedID: e.selected,
		Dialog:     e.dialog,
		DragPhase:  e.Drag().Phase(),
	}
	for _, t := range tables {
		v.Tables = append(v.Tables, TableView{
			Table:     t,
			Treatment: StatusTreatment(t.Status),
			Geometry:  ShapeGeometry(t.Shape),
			Selected:  t.ID == e.selected,
			Dragging:  t.ID == dragID,
			SeatLabel: strconv.Itoa(t.Seats) + " seats",
		})
	}
	return v
}
