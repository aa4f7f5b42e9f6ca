package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-admin/events"
	"github.com/yeremiapane/restaurant-admin/floorplan"
	"github.com/yeremiapane/restaurant-admin/hub"
)

type memStore struct {
	mu    sync.Mutex
	saved *floorplan.Registry
	saves int
	err   error
}

func (s *memStore) Load(context.Context) (*floorplan.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		return floorplan.NewRegistry()
	}
	return s.saved, nil
}

func (s *memStore) Save(_ context.Context, reg *floorplan.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = reg
	s.saves++
	return nil
}

type recordingHub struct {
	msgs []hub.Message
}

func (h *recordingHub) Broadcast(msg hub.Message) {
	h.msgs = append(h.msgs, msg)
}

func (h *recordingHub) events() []string {
	out := make([]string, 0, len(h.msgs))
	for _, m := range h.msgs {
		out = append(out, m.Event)
	}
	return out
}

type recordingPublisher struct {
	published []events.TableEvent
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, msg []byte) error {
	if topic != events.TablesTopic {
		return errors.New("unexpected topic " + topic)
	}
	var evt events.TableEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		return err
	}
	p.published = append(p.published, evt)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type memCache struct {
	view        []byte
	sets        int
	invalidated int
}

func (c *memCache) Get(context.Context) ([]byte, bool) {
	return c.view, c.view != nil
}

func (c *memCache) Set(_ context.Context, view []byte) error {
	c.view = view
	c.sets++
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.view = nil
	c.invalidated++
	return nil
}

type fixture struct {
	svc   *FloorPlanService
	store *memStore
	hub   *recordingHub
	pub   *recordingPublisher
	cache *memCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg, err := floorplan.NewRegistry(
		floorplan.Table{ID: "1", Number: 1, Shape: floorplan.ShapeSquare, Seats: 4, Status: floorplan.StatusAvailable, PositionX: 100, PositionY: 100, Width: 80, Height: 80},
		floorplan.Table{ID: "2", Number: 2, Shape: floorplan.ShapeCircle, Seats: 2, Status: floorplan.StatusReserved, PositionX: 250, PositionY: 100, Width: 70, Height: 70},
	)
	require.NoError(t, err)

	n := 0
	f := fixture{
		store: &memStore{saved: reg},
		hub:   &recordingHub{},
		pub:   &recordingPublisher{},
		cache: &memCache{},
	}
	f.svc = NewFloorPlanService(FloorPlanDeps{
		Store:     f.store,
		Hub:       f.hub,
		Publisher: f.pub,
		Cache:     f.cache,
		IDFunc: func() string {
			n++
			return "new-" + strconv.Itoa(n)
		},
	})
	require.NoError(t, f.svc.Load(context.Background()))
	f.hub.msgs = nil
	return f
}

func TestServiceLoad(t *testing.T) {
	f := newFixture(t)
	assert.Len(t, f.svc.Tables(), 2)
	assert.False(t, f.svc.Dirty())
}

func TestServiceAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seats := 6

	added, err := f.svc.Add(ctx, floorplan.Draft{Seats: &seats})
	require.NoError(t, err)

	assert.Equal(t, "new-1", added.ID)
	assert.Equal(t, 3, added.Number)
	assert.Equal(t, []string{hub.EventTableCreate}, f.hub.events())
	require.Len(t, f.pub.published, 1)
	assert.Equal(t, events.EventTableCreated, f.pub.published[0].EventType)
	assert.True(t, f.svc.Dirty())

	require.NoError(t, f.svc.Flush(ctx))
	assert.False(t, f.svc.Dirty())
	assert.Equal(t, 3, f.store.saved.Len())
}

func TestServiceAddRejectedLeavesState(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Add(context.Background(), floorplan.Draft{})

	var verr *floorplan.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Len(t, f.svc.Tables(), 2)
	assert.Empty(t, f.hub.msgs)
	assert.Empty(t, f.pub.published)
	assert.False(t, f.svc.Dirty())
}

func TestServiceUpdateStatusPublishesStatusChange(t *testing.T) {
	f := newFixture(t)
	occupied := floorplan.StatusOccupied

	updated, err := f.svc.Update(context.Background(), "1", floorplan.Patch{Status: &occupied})
	require.NoError(t, err)

	assert.Equal(t, floorplan.StatusOccupied, updated.Status)
	assert.Equal(t, 100.0, updated.PositionX)
	require.Len(t, f.pub.published, 1)
	assert.Equal(t, events.EventTableStatusChanged, f.pub.published[0].EventType)
	assert.Equal(t, "available", f.pub.published[0].PreviousStatus)

	view := f.svc.View()
	assert.Equal(t, floorplan.ColorRed, view.Tables[0].Treatment.Color)
	assert.Equal(t, "1", view.SelectedID)
}

func TestServiceUpdateUnknown(t *testing.T) {
	f := newFixture(t)
	seats := 3
	_, err := f.svc.Update(context.Background(), "missing", floorplan.Patch{Seats: &seats})
	assert.ErrorIs(t, err, floorplan.ErrTableNotFound)
	assert.Empty(t, f.hub.msgs)
}

func TestServiceDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	removed, err := f.svc.Delete(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", removed.ID)
	assert.Len(t, f.svc.Tables(), 1)
	_, selected := f.svc.SelectedTable()
	assert.False(t, selected)

	_, err = f.svc.Delete(ctx, "2")
	assert.ErrorIs(t, err, floorplan.ErrTableNotFound)
	assert.Len(t, f.svc.Tables(), 1)
}

func TestServiceSelectAndDialogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.OpenDialog(ctx, floorplan.DialogEdit), floorplan.ErrNoSelection)
	require.NoError(t, f.svc.Select(ctx, "2"))
	require.NoError(t, f.svc.OpenDialog(ctx, floorplan.DialogEdit))
	assert.Equal(t, floorplan.DialogEdit, f.svc.View().Dialog)

	f.svc.CloseDialog(ctx)
	assert.Equal(t, floorplan.DialogNone, f.svc.View().Dialog)

	assert.ErrorIs(t, f.svc.Select(ctx, "nope"), floorplan.ErrTableNotFound)
	_, ok := f.svc.SelectedTable()
	assert.False(t, ok)

	require.NoError(t, f.svc.Select(ctx, "1"))
	require.NoError(t, f.svc.Select(ctx, ""))
	_, ok = f.svc.SelectedTable()
	assert.False(t, ok)
}

func TestServiceDragPersistsOnRelease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	container := &floorplan.Rect{Width: 400, Height: 400}
	savesBefore := f.store.saves

	_, err := f.svc.Pointer(ctx, floorplan.PointerEvent{Type: floorplan.PointerDown, TableID: "1", Pointer: floorplan.Point{X: 110, Y: 110}, Container: container})
	require.NoError(t, err)

	moved, err := f.svc.Pointer(ctx, floorplan.PointerEvent{Type: floorplan.PointerMove, Pointer: floorplan.Point{X: 390, Y: 390}, Container: container})
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = f.svc.Pointer(ctx, floorplan.PointerEvent{Type: floorplan.PointerMove, Pointer: floorplan.Point{X: 390, Y: 390}})
	require.NoError(t, err)
	assert.False(t, moved, "missing container skips the frame")

	assert.Equal(t, savesBefore, f.store.saves, "moves are not persisted one by one")

	_, err = f.svc.Pointer(ctx, floorplan.PointerEvent{Type: floorplan.PointerUp})
	require.NoError(t, err)

	assert.Equal(t, savesBefore+1, f.store.saves)
	got, _ := f.store.saved.Get("1")
	assert.Equal(t, 320.0, got.PositionX)
	assert.Equal(t, 320.0, got.PositionY)

	assert.Equal(t, []string{hub.EventDragChange, hub.EventTableMove, hub.EventDragChange}, f.hub.events())
	require.Len(t, f.pub.published, 1)
	assert.Equal(t, events.EventTableMoved, f.pub.published[0].EventType)

	moved, err = f.svc.Pointer(ctx, floorplan.PointerEvent{Type: floorplan.PointerMove, Pointer: floorplan.Point{X: 10, Y: 10}, Container: container})
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestServiceViewJSONUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.ViewJSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.sets)

	second, err := f.svc.ViewJSON(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.cache.sets, "second read is a cache hit")

	require.NoError(t, f.svc.Select(ctx, "1"))
	third, err := f.svc.ViewJSON(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.Equal(t, 2, f.cache.sets)
}

func TestServiceFlushError(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("database is locked")
	seats := 2
	_, err := f.svc.Add(context.Background(), floorplan.Draft{Seats: &seats})
	require.NoError(t, err)

	assert.Error(t, f.svc.Flush(context.Background()))
	assert.True(t, f.svc.Dirty())
}

func TestServiceSeed(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Seed(context.Background(), []floorplan.Table{{ID: "x", Number: 9, Seats: 2, Width: 50, Height: 50}})
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.saved.Len())
	assert.False(t, f.svc.Dirty())
}

// interleavingCache starts a mutation from inside Set, the moment a reader
// is about to store its rendered view.
type interleavingCache struct {
	memCache
	onSet func()
}

func (c *interleavingCache) Set(ctx context.Context, view []byte) error {
	if fn := c.onSet; fn != nil {
		c.onSet = nil
		fn()
	}
	return c.memCache.Set(ctx, view)
}

func TestServiceViewJSONNeverCachesStaleView(t *testing.T) {
	ctx := context.Background()
	c := &interleavingCache{}
	svc := NewFloorPlanService(FloorPlanDeps{Store: &memStore{}, Cache: c})
	require.NoError(t, svc.Load(ctx))

	added := make(chan error, 1)
	c.onSet = func() {
		go func() {
			seats := 4
			_, err := svc.Add(ctx, floorplan.Draft{Seats: &seats})
			added <- err
		}()
	}

	_, err := svc.ViewJSON(ctx)
	require.NoError(t, err)
	require.NoError(t, <-added)

	b, err := svc.ViewJSON(ctx)
	require.NoError(t, err)
	var view floorplan.View
	require.NoError(t, json.Unmarshal(b, &view))
	assert.Len(t, view.Tables, len(svc.Tables()))
	assert.Len(t, view.Tables, 1)
}

func TestServiceReleaseDragOfOnlyEndsMatchingDrag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	container := &floorplan.Rect{Width: 400, Height: 400}

	assert.False(t, f.svc.ReleaseDragOf(ctx, "1"), "nothing is being dragged")

	_, err := f.svc.Pointer(ctx, floorplan.PointerEvent{Type: floorplan.PointerDown, TableID: "1", Pointer: floorplan.Point{X: 110, Y: 110}, Container: container})
	require.NoError(t, err)
	savesBefore := f.store.saves

	assert.False(t, f.svc.ReleaseDragOf(ctx, "2"))
	assert.Equal(t, floorplan.PhaseDragging, f.svc.View().DragPhase, "another table's release leaves the drag alone")
	assert.Equal(t, savesBefore, f.store.saves)

	assert.True(t, f.svc.ReleaseDragOf(ctx, "1"))
	assert.Equal(t, floorplan.PhaseIdle, f.svc.View().DragPhase)
	assert.Equal(t, savesBefore+1, f.store.saves)
	require.Len(t, f.pub.published, 1)
	assert.Equal(t, events.EventTableMoved, f.pub.published[0].EventType)
}
