package chatview

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketchat/internal/domain/chat"
)

// View is the merged, deduplicated, time-ordered message sequence one
// participant sees for one open room. Three writers feed it concurrently -
// the channel push callback, the poller tick and the local send path - and
// all of them go through Ingest, so the id-dedup invariant holds under any
// interleaving.
type View struct {
	mu      sync.Mutex
	seen    map[uuid.UUID]struct{}
	ordered []chat.Message
}

func NewView() *View {
	return &View{seen: make(map[uuid.UUID]struct{})}
}

// Ingest merges messages into the view. A message whose id is already
// present is discarded, not overwritten: content and sender are immutable,
// so a second copy cannot differ in meaningful fields. Returns the messages
// that were actually new, in the order given.
func (v *View) Ingest(msgs []chat.Message) []chat.Message {
	if len(msgs) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var fresh []chat.Message
	for _, m := range msgs {
		if _, ok := v.seen[m.ID]; ok {
			continue
		}
		v.seen[m.ID] = struct{}{}
		v.insert(m)
		fresh = append(fresh, m)
	}
	return fresh
}

// insert keeps the sequence sorted ascending by (created_at, id).
func (v *View) insert(m chat.Message) {
	idx := sort.Search(len(v.ordered), func(i int) bool {
		return chat.Less(m, v.ordered[i])
	})
	v.ordered = append(v.ordered, chat.Message{})
	copy(v.ordered[idx+1:], v.ordered[idx:])
	v.ordered[idx] = m
}

// ApplyRead sets the read timestamp on the given entries. A timestamp that
// is already set is left untouched, so read state never regresses.
func (v *View) ApplyRead(ids []uuid.UUID, at time.Time) {
	if len(ids) == 0 {
		return
	}
	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.ordered {
		if _, ok := want[v.ordered[i].ID]; !ok {
			continue
		}
		if v.ordered[i].ReadAt.Valid {
			continue
		}
		v.ordered[i].ReadAt.Time = at
		v.ordered[i].ReadAt.Valid = true
	}
}

// Messages returns a snapshot of the ordered sequence.
func (v *View) Messages() []chat.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]chat.Message, len(v.ordered))
	copy(out, v.ordered)
	return out
}

func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.ordered)
}
