// Package sse implements a Server-Sent Events broker for chart library updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/srtbspeeds/internal/difficulty"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ChartEvent is the data of every chart.* and speeds.* event.
type ChartEvent struct {
	Path       string `json:"path"`
	Key        string `json:"key,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Chart event kinds accepted by PublishChartEvent.
const (
	KindCreated    = "created"
	KindUpdated    = "updated"
	KindDeleted    = "deleted"
	KindIntegrated = "integrated"
	KindRemoved    = "removed"
)

const libraryUpdated = "library.updated"

var eventTypes = map[string]string{
	KindCreated:    "chart.created",
	KindUpdated:    "chart.updated",
	KindDeleted:    "chart.deleted",
	KindIntegrated: "speeds.integrated",
	KindRemoved:    "speeds.removed",
}

// clientBuffer is the number of frames queued per client before drops.
const clientBuffer = 64

// Broker fans chart events out to SSE clients.
//
// One goroutine owns the client set, the frame counter and the library
// throttle; the exported methods only talk to it over channels.
type Broker struct {
	libraryEvery time.Duration
	// Heartbeat is the interval of keep-alive comments sent by ServeHTTP.
	Heartbeat time.Duration

	register   chan chan []byte
	unregister chan chan []byte
	charts     chan Event
	counts     chan chan int

	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// NewBroker creates a new SSE broker. library.updated is emitted at most once
// per libraryThrottle.
func NewBroker(libraryThrottle time.Duration) *Broker {
	if libraryThrottle <= 0 {
		libraryThrottle = 2 * time.Second
	}

	b := &Broker{
		libraryEvery: libraryThrottle,
		Heartbeat:    30 * time.Second,
		register:     make(chan chan []byte),
		unregister:   make(chan chan []byte),
		charts:       make(chan Event, 256),
		counts:       make(chan chan int),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	go b.loop()
	return b
}

// frame renders one SSE message with its sequence id.
func frame(id uint64, event Event) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, data)), nil
}

func (b *Broker) loop() {
	defer close(b.done)

	clients := make(map[chan []byte]struct{})
	var seq uint64
	var lastLibrary time.Time

	send := func(event Event) {
		seq++
		msg, err := frame(seq, event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// slow client, frame dropped
			}
		}
	}

	for {
		select {
		case <-b.quit:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.register:
			clients[ch] = struct{}{}

		case ch := <-b.unregister:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.charts:
			send(event)
			if now := time.Now(); now.Sub(lastLibrary) >= b.libraryEvery {
				lastLibrary = now
				send(Event{Type: libraryUpdated, Data: struct{}{}})
			}

		case reply := <-b.counts:
			reply <- len(clients)
		}
	}
}

// Close stops the broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.quit)
	}
	<-b.done
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.register <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unregister <- ch:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	reply := make(chan int, 1)
	select {
	case b.counts <- reply:
	case <-b.done:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-b.done:
		return 0
	}
}

// PublishChartEvent publishes a chart change followed, at most once per
// throttle window, by library.updated. key names the affected speed-trigger
// entry and may be empty. Unknown kinds are ignored.
func (b *Broker) PublishChartEvent(kind, path, key string) {
	typ, ok := eventTypes[kind]
	if !ok {
		return
	}
	data := ChartEvent{Path: path, Key: key}
	if d, ok := difficulty.FromKey(key); ok {
		data.Difficulty = d.String()
	}
	if b.closed.Load() {
		return
	}
	select {
	case b.charts <- Event{Type: typ, Data: data}:
	case <-b.done:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	heartbeat := b.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
