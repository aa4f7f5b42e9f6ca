package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-admin/utils"
)

type Flusher interface {
	Flush(ctx context.Context) error
}

// Autosaver periodically flushes the floor plan so drags and edits reach
// storage even when no drag-end or shutdown triggers a save.
type Autosaver struct {
	Target   Flusher
	Interval time.Duration
	Timeout  time.Duration

	stopChan  chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewAutosaver(target Flusher, interval time.Duration) *Autosaver {
	return &Autosaver{
		Target:   target,
		Interval: interval,
		Timeout:  5 * time.Second,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker loop. Calls after the first, or after Stop, do
// nothing.
func (a *Autosaver) Start() {
	a.startOnce.Do(func() {
		go a.loop()
	})
}

func (a *Autosaver) loop() {
	defer close(a.done)
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.flush()
		case <-a.stopChan:
			return
		}
	}
}

// Stop ends the loop and performs one last flush. Safe to call more than
// once, and without a prior Start.
func (a *Autosaver) Stop() {
	a.stopOnce.Do(func() {
		a.startOnce.Do(func() { close(a.done) })
		close(a.stopChan)
		<-a.done
		a.flush()
	})
}

func (a *Autosaver) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), a.Timeout)
	defer cancel()
	if err := a.Target.Flush(ctx); err != nil {
		utils.ErrorLogger.Printf("Autosave failed: %v", err)
	}
}
