package agent

// EventType tags a stream event.
type EventType string

const (
	EventProgress EventType = "progress"
	EventSummary  EventType = "summary"
	EventError    EventType = "error"
	EventDone     EventType = "done"
)

// Event is one streamed step of a run. Error and done are terminal; exactly
// one of them ends every stream.
type Event struct {
	Type    EventType `json:"type"`
	Message string    `json:"message,omitempty"`
	Title   string    `json:"title,omitempty"`
	URL     string    `json:"url,omitempty"`
	Summary string    `json:"summary,omitempty"`
}

// Emitter receives events in order. It is called from the run's goroutine.
type Emitter func(Event)

func progress(msg string) Event { return Event{Type: EventProgress, Message: msg} }
