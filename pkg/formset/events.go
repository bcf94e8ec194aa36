package formset

const (
	// EventEntryAdded fires after a new entry is inserted and names are
	// renumbered.
	EventEntryAdded = "formset.add"
	// EventEntryRemoved fires after an entry is destroyed or flagged as
	// deleted.
	EventEntryRemoved = "formset.del"
)

// Event is delivered to listeners. Group is the element the event is
// emitted on; Entry is the added or removed entry.
type Event struct {
	Type  string
	Group *Group
	Entry *Entry
}

// Listener receives formset events.
type Listener func(Event)

// On subscribes fn to event.
func (f *Formset) On(event string, fn Listener) {
	if fn == nil {
		return
	}
	f.listeners[event] = append(f.listeners[event], fn)
}

func (f *Formset) emit(evt Event) {
	for _, fn := range f.listeners[evt.Type] {
		fn(evt)
	}
}
