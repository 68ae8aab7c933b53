package domain

import "fmt"

// EventKind identifies the kind of structural change broadcast to other
// consumers after a successful write.
type EventKind uint8

const (
	EventAdded EventKind = iota
	EventUpdated
	EventDeleted
)

// String returns a stable string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event describes one applied mutation. Style is set for added/updated
// events; ID is always set. CodeChanged reports whether the update changed
// the sections' matching-relevant structure (false for metadata-only
// updates); Reason carries the caller-supplied cause of the write.
type Event struct {
	Kind        EventKind
	ID          int64
	Style       *Style
	CodeChanged bool
	Reason      string
}
