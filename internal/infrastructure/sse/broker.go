// Package sse streams enhancement progress as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/specgate/pkg/domain/convergence"
)

// Event types.
const (
	TypeStarted   = "enhancement.started"
	TypeIteration = "enhancement.iteration"
	TypeFinished  = "enhancement.finished"
)

// Event is one progress notification.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Path       string    `json:"path"`
	Kind       string    `json:"kind,omitempty"`
	Iteration  int       `json:"iteration,omitempty"`
	Score      float64   `json:"score"`
	Delta      float64   `json:"delta,omitempty"`
	Threshold  float64   `json:"threshold,omitempty"`
	Applied    int       `json:"applied,omitempty"`
	Failed     int       `json:"failed,omitempty"`
	StopReason string    `json:"stop_reason,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Broker fans enhancement events out to connected SSE clients. It
// implements convergence.Observer; slow clients miss events rather than
// blocking the run.
type Broker struct {
	mu      sync.RWMutex
	clients map[chan Event]struct{}
	now     func() time.Time
}

func NewBroker() *Broker {
	return &Broker{
		clients: make(map[chan Event]struct{}),
		now:     time.Now,
	}
}

// Clients returns the number of connected clients.
func (b *Broker) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Publish sends e to every client.
func (b *Broker) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = b.now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.clients {
		select {
		case ch <- e:
		default:
		}
	}
}

// runObserver remembers the path of one run so iteration events can carry it.
type runObserver struct {
	broker *Broker
	path   string
	kind   string
}

// Observer returns a convergence.Observer publishing to b.
func (b *Broker) Observer() convergence.Observer {
	return &runObserver{broker: b}
}

func (o *runObserver) CycleStarted(s convergence.CycleStart) {
	o.path, o.kind = s.Path, string(s.Kind)
	o.broker.Publish(Event{Type: TypeStarted, Path: o.path, Kind: o.kind, Score: s.InitialScore, Threshold: s.Threshold})
}

func (o *runObserver) IterationCompleted(it convergence.Iteration) {
	o.broker.Publish(Event{
		Type:      TypeIteration,
		Path:      o.path,
		Kind:      o.kind,
		Iteration: it.Number,
		Score:     it.Score,
		Delta:     it.Delta,
		Applied:   len(it.Applied),
		Failed:    len(it.Failed),
	})
}

func (o *runObserver) CycleFinished(r convergence.Result) {
	o.broker.Publish(Event{
		Type:       TypeFinished,
		Path:       r.Path,
		Kind:       string(r.Kind),
		Iteration:  r.Iterations,
		Score:      r.FinalScore,
		Threshold:  r.Threshold,
		Applied:    len(r.Applied),
		Failed:     len(r.Failed),
		StopReason: string(r.StopReason),
	})
}

// ServeHTTP handles SSE connections. ?types= filters by event type.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	typeFilter := make(map[string]bool)
	if types := r.URL.Query().Get("types"); types != "" {
		for _, t := range strings.Split(types, ",") {
			typeFilter[strings.TrimSpace(t)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := make(chan Event, 64)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.clients, ch)
		b.mu.Unlock()
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-ch:
			if len(typeFilter) > 0 && !typeFilter[e.Type] {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.Type, data)
			flusher.Flush()
		}
	}
}
