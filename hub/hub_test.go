package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	frames  [][]byte
	failing bool
	closed  bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if messageType != websocket.TextMessage {
		return errors.New("unexpected frame type")
	}
	if c.failing {
		return errors.New("broken pipe")
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	h := New(nil)
	a, b := &fakeConn{}, &fakeConn{}
	h.Register(a, "admin")
	h.Register(b, "staff")

	h.Broadcast(Message{Event: EventTableMove, Data: map[string]string{"id": "1"}})

	for _, c := range []*fakeConn{a, b} {
		require.Len(t, c.frames, 1)
		var msg Message
		require.NoError(t, json.Unmarshal(c.frames[0], &msg))
		assert.Equal(t, EventTableMove, msg.Event)
	}
}

func TestBroadcastDropsFailingClient(t *testing.T) {
	h := New(nil)
	ok, broken := &fakeConn{}, &fakeConn{failing: true}
	h.Register(ok, "admin")
	h.Register(broken, "admin")

	h.Broadcast(Message{Event: EventTableUpdate})

	assert.Equal(t, 1, h.Clients())
	assert.True(t, broken.closed)
	assert.Len(t, ok.frames, 1)
}

func TestUnregisterClosesOnce(t *testing.T) {
	h := New(nil)
	c := &fakeConn{}
	h.Register(c, "staff")
	h.Unregister(c)
	h.Unregister(c)

	assert.True(t, c.closed)
	assert.Equal(t, 0, h.Clients())
}
