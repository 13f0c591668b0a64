package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"pinmap/internal/mapping/application"
	"pinmap/internal/observability/metrics"
)

const subscriptionBuffer = 16

// Frame is one server-sent event.
type Frame struct {
	Name    string
	Payload []byte
}

// writeTo encodes the frame in text/event-stream format.
func (f Frame) writeTo(w io.Writer) error {
	buf := make([]byte, 0, len(f.Payload)+len(f.Name)+16)
	buf = append(buf, "event: "...)
	buf = append(buf, f.Name...)
	buf = append(buf, "\ndata: "...)
	buf = append(buf, f.Payload...)
	buf = append(buf, "\n\n"...)
	_, err := w.Write(buf)
	return err
}

// Subscription receives the frames published after it was opened.
type Subscription struct {
	broker *SSEBroker
	frames chan Frame
	closed bool
}

// Frames returns the receive side of the subscription. It is closed by Close.
func (s *Subscription) Frames() <-chan Frame {
	return s.frames
}

// Close detaches the subscription from its broker. Calling it twice is a no-op.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	b := s.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	delete(b.subs, s)
	close(s.frames)
	metrics.AddStreamClients(-1)
}

// SSEBroker fans out pipeline events to connected stream clients. Publishing never
// blocks the caller, which is the pipeline's writer goroutine.
type SSEBroker struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewSSEBroker constructs a broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{subs: make(map[*Subscription]struct{})}
}

// Notify implements application.Notifier.
func (b *SSEBroker) Notify(_ context.Context, event application.Event) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	b.publish(Frame{Name: event.Type, Payload: payload})
}

// Subscribe opens a subscription.
func (b *SSEBroker) Subscribe() *Subscription {
	if b == nil {
		return nil
	}
	s := &Subscription{broker: b, frames: make(chan Frame, subscriptionBuffer)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	metrics.AddStreamClients(1)
	return s
}

// Clients returns the number of open subscriptions.
func (b *SSEBroker) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// publish holds the lock across the sends so Close cannot close a channel mid-send.
// Subscribers with a full buffer miss the frame; the next refresh carries a newer version.
func (b *SSEBroker) publish(f Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		select {
		case s.frames <- f:
		default:
		}
	}
}

// StreamHandler serves the SSE grid event stream.
type StreamHandler struct {
	broker *SSEBroker
}

// NewStreamHandler constructs a stream handler.
func NewStreamHandler(broker *SSEBroker) *StreamHandler {
	return &StreamHandler{broker: broker}
}

// ServeHTTP handles GET /api/v1/grid/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.broker.Subscribe()
	defer sub.Close()

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")

	if err := (Frame{Name: "ready", Payload: []byte("{}")}).writeTo(w); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case f, open := <-sub.Frames():
			if !open {
				return
			}
			if err := f.writeTo(w); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
