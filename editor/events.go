package editor

// Event names a notification emitted by a buffer or a session.
type Event uint8

const (
	EventChanged Event = iota // buffer text changed
	EventLoaded
	EventSaved
	EventSaveFailed
	EventPathChanged
	EventTabAdded
	EventTabClosed
	EventTabActivated
	EventTabRenamed
	EventSessionEnded
	EventAutoSave // auto-save enabled or disabled
)

// Notice is what subscribers receive. Fields not relevant to the event are zero.
type Notice struct {
	Event  Event
	Tab    *Tab
	Buffer *Buffer
	Err    error
}

type Listener func(Notice)

type subscription struct {
	id int
	fn Listener
}

// notifier is a small publish/subscribe registry keyed by event.
type notifier struct {
	subs   map[Event][]subscription
	nextID int
}

// Subscribe registers fn for ev and returns a function that removes it again.
func (n *notifier) Subscribe(ev Event, fn Listener) (cancel func()) {
	if n.subs == nil {
		n.subs = map[Event][]subscription{}
	}
	n.nextID++
	id := n.nextID
	n.subs[ev] = append(n.subs[ev], subscription{id, fn})

	return func() {
		subs := n.subs[ev]
		for i, s := range subs {
			if s.id == id {
				n.subs[ev] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (n *notifier) emit(no Notice) {
	// copy so listeners may unsubscribe while being called
	subs := append([]subscription(nil), n.subs[no.Event]...)
	for _, s := range subs {
		s.fn(no)
	}
}
