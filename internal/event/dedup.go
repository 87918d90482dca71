package event

// KeyKind tells which fields a dedup Key was built from
type KeyKind uint8

const (
	// ByID keys on the calendar's data-event-id
	ByID KeyKind = iota + 1
	// ByTitleDate keys on title and start date when no ID is known
	ByTitleDate
)

// Key identifies a real-world event. Keys of different kinds never compare
// equal, so an ID can not collide with a title/date pair.
type Key struct {
	Kind      KeyKind
	ID        string
	Title     string
	StartDate string
}

// KeyOf derives the dedup key of an event
func KeyOf(e *Event) Key {
	if e.EventID != "" {
		return Key{Kind: ByID, ID: e.EventID}
	}
	return Key{Kind: ByTitleDate, Title: e.Title, StartDate: e.StartText()}
}

// Dedupe drops events whose key was already seen, keeping the first
// occurrence and the original order.
func Dedupe(events []*Event) []*Event {
	seen := make(map[Key]bool, len(events))
	unique := make([]*Event, 0, len(events))
	for _, evt := range events {
		key := KeyOf(evt)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, evt)
	}
	return unique
}
