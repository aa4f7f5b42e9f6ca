package floorplan

type Dialog string

const (
	DialogNone   Dialog = ""
	DialogAdd    Dialog = "add"
	DialogEdit   Dialog = "edit"
	DialogDelete Dialog = "delete"
)

func ParseDialog(s string) (Dialog, error) {
	switch d := Dialog(s); d {
	case DialogAdd, DialogEdit, DialogDelete:
		return d, nil
	}
	return DialogNone, ErrUnknownDialog
}

// Editor is the floor-plan state container: the table registry, the current
// selection, the open dialog and the drag controller. It is not safe for
// concurrent use; callers serialize events onto it.
type Editor struct {
	registry *Registry
	selected string
	dialog   Dialog
	drag     DragController
	newID    IDFunc
}

type EditorOption func(*Editor)

func WithIDFunc(fn IDFunc) EditorOption {
	return func(e *Editor) {
		e.newID = fn
	}
}

func NewEditor(reg *Registry, opts ...EditorOption) *Editor {
	if reg == nil {
		reg, _ = NewRegistry()
	}
	e := &Editor{registry: reg, newID: NewID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Registry() *Registry {
	return e.registry
}

// Replace swaps the whole registry, e.g. after loading from storage. The
// selection is dropped if it no longer resolves and any drag is cancelled.
func (e *Editor) Replace(reg *Registry) {
	e.registry = reg
	if !reg.Has(e.selected) {
		e.selected = ""
	}
	e.drag.Release()
}

func (e *Editor) Drag() DragState {
	return e.drag.State()
}

func (e *Editor) Dialog() Dialog {
	return e.dialog
}

// Selected returns the selected table; ok is false when nothing is selected.
func (e *Editor) Selected() (Table, bool) {
	if e.selected == "" {
		return Table{}, false
	}
	return e.registry.Get(e.selected)
}

func (e *Editor) SelectedID() string {
	return e.selected
}

// Select points the selection at id. Unknown ids deselect.
func (e *Editor) Select(id string) {
	if !e.registry.Has(id) {
		e.selected = ""
		return
	}
	e.selected = id
}

func (e *Editor) Deselect() {
	e.selected = ""
}

func (e *Editor) OpenAdd() {
	e.dialog = DialogAdd
}

func (e *Editor) OpenEdit() error {
	if _, ok := e.Selected(); !ok {
		return ErrNoSelection
	}
	e.dialog = DialogEdit
	return nil
}

func (e *Editor) OpenDelete() error {
	if _, ok := e.Selected(); !ok {
		return ErrNoSelection
	}
	e.dialog = DialogDelete
	return nil
}

func (e *Editor) Open(d Dialog) error {
	switch d {
	case DialogAdd:
		e.OpenAdd()
		return nil
	case DialogEdit:
		return e.OpenEdit()
	case DialogDelete:
		return e.OpenDelete()
	}
	return ErrUnknownDialog
}

func (e *Editor) CloseDialog() {
	e.dialog = DialogNone
}

// CommitAdd validates the draft and appends a new table. On a validation
// failure the registry is left as is and the *ValidationError is returned.
func (e *Editor) CommitAdd(d Draft) (Table, error) {
	if err := d.Validate(); err != nil {
		return Table{}, err
	}

	t := Table{
		ID:        e.newID(),
		Number:    e.registry.NextNumber(),
		Shape:     ShapeSquare,
		Seats:     *d.Seats,
		Status:    StatusAvailable,
		PositionX: DefaultPositionX,
		PositionY: DefaultPositionY,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
	}
	if d.Number != nil {
		t.Number = *d.Number
	}
	if d.Shape != "" {
		t.Shape = d.Shape
	}
	if d.Status != "" {
		t.Status = d.Status
	}
	if d.Width != nil {
		t.Width = *d.Width
	}
	if d.Height != nil {
		t.Height = *d.Height
	}

	next, err := e.registry.Insert(t)
	if err != nil {
		return Table{}, err
	}
	e.registry = next
	if e.dialog == DialogAdd {
		e.dialog = DialogNone
	}
	return t, nil
}

// CommitEdit applies patch to the selected table and closes the edit dialog.
// If the selection went stale the registry is unchanged.
func (e *Editor) CommitEdit(p Patch) (Table, error) {
	if e.selected == "" {
		return Table{}, ErrNoSelection
	}
	if err := p.Validate(); err != nil {
		return Table{}, err
	}
	e.registry = e.registry.Update(e.selected, p.Apply)
	if e.dialog == DialogEdit {
		e.dialog = DialogNone
	}
	t, ok := e.registry.Get(e.selected)
	if !ok {
		e.selected = ""
		return Table{}, ErrTableNotFound
	}
	return t, nil
}

// CommitDelete removes the selected table and clears the selection.
func (e *Editor) CommitDelete() (Table, error) {
	if e.selected == "" {
		return Table{}, ErrNoSelection
	}
	removed, ok := e.registry.Get(e.selected)
	e.registry = e.registry.Delete(e.selected)
	if id, _, dragging := e.drag.State().Target(); dragging && id == e.selected {
		e.drag.Release()
	}
	e.selected = ""
	if e.dialog == DialogDelete {
		e.dialog = DialogNone
	}
	if !ok {
		return Table{}, ErrTableNotFound
	}
	return removed, nil
}
