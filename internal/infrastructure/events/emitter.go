package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
)

// Prefix marks a line as a machine-readable event for the consuming process.
const Prefix = "EVENT_JSON:"

var _ output.EventSink = (*Emitter)(nil)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// Emitter writes one event per line. Each line goes out in a single Write so
// concurrent emitters never interleave.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(eventType entity.EventType, data any) error {
	payload, err := json.Marshal(entity.Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	line := make([]byte, 0, len(Prefix)+len(payload)+1)
	line = append(line, Prefix...)
	line = append(line, payload...)
	line = append(line, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.w.Write(line); err != nil {
		return fmt.Errorf("write %s event: %w", eventType, err)
	}

	switch w := e.w.(type) {
	case flusher:
		return w.Flush()
	case syncer:
		// Sync on a terminal or pipe reports EINVAL; the bytes are already out.
		_ = w.Sync()
	}
	return nil
}
