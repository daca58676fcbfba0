package ws

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient, conn'suz bir Client kurar — sendEvent ve hub yaşam döngüsü
// testleri websocket bağlantısına dokunmaz.
func newTestClient(hub *Hub, userID string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

func TestSendEventAfterDisconnectDoesNotPanic(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "user-1")

	hub.addClient(c)
	hub.removeClient(c)

	// Bağlantı koptuktan sonra stream goroutine'inden gelen geç bir chunk
	// kapalı channel'a yazmaya çalışmamalı — sessizce düşmeli.
	assert.NotPanics(t, func() {
		c.sendEvent(Event{Op: OpAssistantChunk, Data: ChunkData{Content: "late chunk"}})
	})
}

func TestRemoveClientCancelsStreamContext(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "user-1")
	hub.addClient(c)

	sink := &clientSink{client: c}
	require.NoError(t, sink.Chunk("before disconnect"))

	hub.removeClient(c)

	// Context iptal edildi — sink bir sonraki chunk'ta stream'i durdurur.
	assert.Error(t, sink.Chunk("after disconnect"))
	assert.Error(t, c.ctx.Err())
}

func TestRemoveClientIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub, "user-1")
	hub.addClient(c)

	assert.NotPanics(t, func() {
		hub.removeClient(c)
		hub.removeClient(c)
		c.closeSend()
	})
}

func TestConcurrentSendDuringDisconnect(t *testing.T) {
	// Stream goroutine'i chunk basarken bağlantının kopması panic üretmemeli.
	// Küçük buffer'lı channel ile gönderim/kapanış pencereleri zorlanır.
	for i := 0; i < 50; i++ {
		hub := NewHub()
		c := newTestClient(hub, "user-1")
		c.send = make(chan []byte, 1)
		hub.addClient(c)

		var wg sync.WaitGroup
		wg.Add(2)

		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				c.sendEvent(Event{Op: OpAssistantChunk, Data: ChunkData{Content: "x"}})
			}
		}()
		go func() {
			defer wg.Done()
			hub.removeClient(c)
		}()

		wg.Wait()
	}
}

func TestShutdownClosesAllClients(t *testing.T) {
	hub := NewHub()
	c1 := newTestClient(hub, "user-1")
	c2 := newTestClient(hub, "user-2")
	hub.addClient(c1)
	hub.addClient(c2)

	hub.Shutdown()

	assert.Empty(t, hub.OnlineUserIDs())
	assert.Error(t, c1.ctx.Err())
	assert.Error(t, c2.ctx.Err())
	assert.NotPanics(t, func() {
		c1.sendEvent(Event{Op: OpHeartbeatAck})
	})
}
