package output

import "agent-bridge/internal/domain/entity"

// EventSink receives the progress events a consuming process reads.
type EventSink interface {
	Emit(eventType entity.EventType, data any) error
}
