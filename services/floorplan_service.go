package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-admin/cache"
	"github.com/yeremiapane/restaurant-admin/events"
	"github.com/yeremiapane/restaurant-admin/floorplan"
	"github.com/yeremiapane/restaurant-admin/hub"
	"github.com/yeremiapane/restaurant-admin/utils"
)

type SnapshotStore interface {
	Load(ctx context.Context) (*floorplan.Registry, error)
	Save(ctx context.Context, reg *floorplan.Registry) error
}

type Broadcaster interface {
	Broadcast(msg hub.Message)
}

type FloorPlanDeps struct {
	Store     SnapshotStore
	Hub       Broadcaster
	Publisher events.Publisher
	Cache     cache.ViewCache
	IDFunc    floorplan.IDFunc
}

// FloorPlanService owns the floor-plan editor. Every call takes the same
// lock, so events apply one at a time in arrival order, each to completion.
type FloorPlanService struct {
	mu     sync.Mutex
	editor *floorplan.Editor
	saved  *floorplan.Registry

	flushMu sync.Mutex

	store     SnapshotStore
	hub       Broadcaster
	publisher events.Publisher
	cache     cache.ViewCache
}

func NewFloorPlanService(deps FloorPlanDeps) *FloorPlanService {
	var opts []floorplan.EditorOption
	if deps.IDFunc != nil {
		opts = append(opts, floorplan.WithIDFunc(deps.IDFunc))
	}
	editor := floorplan.NewEditor(nil, opts...)

	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &FloorPlanService{
		editor:    editor,
		saved:     editor.Registry(),
		store:     deps.Store,
		hub:       deps.Hub,
		publisher: publisher,
		cache:     deps.Cache,
	}
}

// Load replaces the in-memory floor plan with the stored snapshot.
func (s *FloorPlanService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	reg, err := s.store.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.editor.Replace(reg)
	s.saved = reg
	s.afterChange(ctx, hub.Message{Event: hub.EventFloorPlanReload, Data: floorplan.Render(s.editor)}, nil)
	utils.InfoLogger.Printf("Floor plan loaded: %d tables", reg.Len())
	return nil
}

// Seed installs tables into an empty floor plan and persists them.
func (s *FloorPlanService) Seed(ctx context.Context, tables []floorplan.Table) error {
	reg, err := floorplan.NewRegistry(tables...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.editor.Replace(reg)
	s.afterChange(ctx, hub.Message{Event: hub.EventFloorPlanReload, Data: floorplan.Render(s.editor)}, nil)
	s.mu.Unlock()

	return s.Flush(ctx)
}

func (s *FloorPlanService) View() floorplan.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return floorplan.Render(s.editor)
}

// ViewJSON returns the encoded view, served from the cache when possible.
// Render and cache fill happen under the editor lock, so a mutation's
// Invalidate always lands after any Set of the view it replaced.
func (s *FloorPlanService) ViewJSON(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if b, ok := s.cache.Get(ctx); ok {
			return b, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(floorplan.Render(s.editor))
	if err != nil {
		return nil, fmt.Errorf("encode floor plan: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, b); err != nil {
			utils.ErrorLogger.Printf("floor plan cache set: %v", err)
		}
	}
	return b, nil
}

func (s *FloorPlanService) Tables() []floorplan.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Registry().All()
}

func (s *FloorPlanService) Get(id string) (floorplan.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Registry().Get(id)
}

func (s *FloorPlanService) Add(ctx context.Context, d floorplan.Draft) (floorplan.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.editor.CommitAdd(d)
	if err != nil {
		return floorplan.Table{}, err
	}
	s.afterChange(ctx,
		hub.Message{Event: hub.EventTableCreate, Data: t},
		tableEvent(events.EventTableCreated, t, ""),
	)
	utils.InfoLogger.Printf("Table %d created (id=%s)", t.Number, t.ID)
	return t, nil
}

// Update selects id and commits patch as the edit dialog would.
func (s *FloorPlanService) Update(ctx context.Context, id string, p floorplan.Patch) (floorplan.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.editor.Registry().Get(id)
	if !ok {
		return floorplan.Table{}, floorplan.ErrTableNotFound
	}
	s.editor.Select(id)
	t, err := s.editor.CommitEdit(p)
	if err != nil {
		return floorplan.Table{}, err
	}

	evt := tableEvent(events.EventTableUpdated, t, "")
	if before.Status != t.Status {
		evt = tableEvent(events.EventTableStatusChanged, t, before.Status)
	}
	s.afterChange(ctx, hub.Message{Event: hub.EventTableUpdate, Data: t}, evt)
	utils.InfoLogger.Printf("Table %d updated (status=%s)", t.Number, t.Status)
	return t, nil
}

// Delete selects id and commits the delete dialog.
func (s *FloorPlanService) Delete(ctx context.Context, id string) (floorplan.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.editor.Registry().Has(id) {
		return floorplan.Table{}, floorplan.ErrTableNotFound
	}
	s.editor.Select(id)
	t, err := s.editor.CommitDelete()
	if err != nil {
		return floorplan.Table{}, err
	}
	s.afterChange(ctx,
		hub.Message{Event: hub.EventTableDelete, Data: map[string]string{"id": t.ID}},
		tableEvent(events.EventTableDeleted, t, ""),
	)
	utils.InfoLogger.Printf("Table %d deleted (id=%s)", t.Number, t.ID)
	return t, nil
}

// Select points the selection at id; an empty id deselects.
func (s *FloorPlanService) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if id == "" {
		s.editor.Deselect()
	} else {
		s.editor.Select(id)
		if s.editor.SelectedID() == "" {
			err = floorplan.ErrTableNotFound
		}
	}
	s.afterChange(ctx, hub.Message{Event: hub.EventSelectionChange, Data: map[string]string{"selected_id": s.editor.SelectedID()}}, nil)
	return err
}

func (s *FloorPlanService) OpenDialog(ctx context.Context, d floorplan.Dialog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editor.Open(d); err != nil {
		return err
	}
	s.afterChange(ctx, hub.Message{Event: hub.EventDialogChange, Data: map[string]floorplan.Dialog{"dialog": d}}, nil)
	return nil
}

func (s *FloorPlanService) CloseDialog(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.editor.CloseDialog()
	s.afterChange(ctx, hub.Message{Event: hub.EventDialogChange, Data: map[string]floorplan.Dialog{"dialog": floorplan.DialogNone}}, nil)
}

func (s *FloorPlanService) SelectedTable() (floorplan.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Selected()
}

// Pointer applies one pointer event. A release that ends a drag persists
// the snapshot so positions survive a restart without waiting for autosave.
func (s *FloorPlanService) Pointer(ctx context.Context, ev floorplan.PointerEvent) (bool, error) {
	s.mu.Lock()
	moved, dropped, err := s.pointerLocked(ctx, ev)
	s.mu.Unlock()
	if err != nil {
		return false, err
	}

	if dropped {
		s.flushAfterDrop(ctx)
	}
	return moved, nil
}

// ReleaseDragOf ends the current drag only when it is dragging tableID.
// Used when the client that pressed the table goes away.
func (s *FloorPlanService) ReleaseDragOf(ctx context.Context, tableID string) bool {
	s.mu.Lock()
	id, _, ok := s.editor.Drag().Target()
	if !ok || id != tableID {
		s.mu.Unlock()
		return false
	}
	_, dropped, _ := s.pointerLocked(ctx, floorplan.PointerEvent{Type: floorplan.PointerLeave})
	s.mu.Unlock()

	if dropped {
		s.flushAfterDrop(ctx)
	}
	return true
}

// pointerLocked runs with s.mu held. dropped reports a drag that just ended
// on a table still present.
func (s *FloorPlanService) pointerLocked(ctx context.Context, ev floorplan.PointerEvent) (moved, dropped bool, err error) {
	wasDragging := s.editor.Drag()
	moved, err = s.editor.HandlePointer(ev)
	if err != nil {
		return false, false, err
	}

	switch {
	case moved:
		id, _, _ := s.editor.Drag().Target()
		t, _ := s.editor.Registry().Get(id)
		s.afterChange(ctx, hub.Message{Event: hub.EventTableMove, Data: t}, nil)
	case ev.Type == floorplan.PointerDown:
		s.afterChange(ctx, hub.Message{Event: hub.EventDragChange, Data: map[string]interface{}{"phase": floorplan.PhaseDragging, "table_id": ev.TableID}}, nil)
	case wasDragging.Dragging() && !s.editor.Drag().Dragging():
		id, _, _ := wasDragging.Target()
		var evt *events.TableEvent
		if t, ok := s.editor.Registry().Get(id); ok {
			dropped = true
			evt = tableEvent(events.EventTableMoved, t, "")
		}
		s.afterChange(ctx, hub.Message{Event: hub.EventDragChange, Data: map[string]interface{}{"phase": floorplan.PhaseIdle, "table_id": id}}, evt)
	}
	return moved, dropped, nil
}

func (s *FloorPlanService) flushAfterDrop(ctx context.Context) {
	if err := s.Flush(ctx); err != nil {
		utils.ErrorLogger.Printf("Failed to persist floor plan after drag: %v", err)
	}
}

// Dirty reports whether the registry changed since the last save.
func (s *FloorPlanService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Registry() != s.saved
}

// Flush saves the current snapshot if it changed since the last save.
func (s *FloorPlanService) Flush(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	reg := s.editor.Registry()
	clean := reg == s.saved
	s.mu.Unlock()
	if clean {
		return nil
	}

	if err := s.store.Save(ctx, reg); err != nil {
		return fmt.Errorf("save floor plan: %w", err)
	}

	s.mu.Lock()
	s.saved = reg
	s.mu.Unlock()
	return nil
}

// afterChange runs with s.mu held.
func (s *FloorPlanService) afterChange(ctx context.Context, msg hub.Message, evt *events.TableEvent) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			utils.ErrorLogger.Printf("floor plan cache invalidate: %v", err)
		}
	}
	if s.hub != nil {
		s.hub.Broadcast(msg)
	}
	if evt != nil {
		s.publish(ctx, *evt)
	}
}

func (s *FloorPlanService) publish(ctx context.Context, evt events.TableEvent) {
	body, err := evt.Marshal()
	if err != nil {
		utils.ErrorLogger.Printf("marshal %s: %v", evt.EventType, err)
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, events.TablesTopic, body); err != nil && !errors.Is(err, context.Canceled) {
		utils.ErrorLogger.Printf("publish %s for table %s: %v", evt.EventType, evt.TableID, err)
	}
}

func tableEvent(kind string, t floorplan.Table, previous floorplan.Status) *events.TableEvent {
	return &events.TableEvent{
		EventType:      kind,
		TableID:        t.ID,
		Number:         t.Number,
		Status:         string(t.Status),
		PreviousStatus: string(previous),
		PositionX:      t.PositionX,
		PositionY:      t.PositionY,
		Source:         "floorplan",
		OccurredAt:     time.Now().UTC(),
	}
}
