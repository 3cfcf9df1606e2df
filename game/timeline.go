package game

import (
	"sort"
	"time"
)

type scheduled struct {
	at     time.Duration
	seq    uint64
	action func()
}

// Timeline runs actions at offsets on a logical clock that only moves
// when Advance is called. Actions due at the same instant run in the order
// they were scheduled; each runs exactly once.
type Timeline struct {
	now     time.Duration
	seq     uint64
	pending []scheduled
}

// Now is the logical time elapsed since the timeline was created or cleared.
func (t *Timeline) Now() time.Duration { return t.now }

// Pending is the number of actions not yet run.
func (t *Timeline) Pending() int { return len(t.pending) }

// Schedule queues action to run offset after the current logical time.
func (t *Timeline) Schedule(offset time.Duration, action func()) {
	if offset < 0 {
		offset = 0
	}
	t.seq++
	s := scheduled{at: t.now + offset, seq: t.seq, action: action}
	i := sort.Search(len(t.pending), func(i int) bool {
		p := t.pending[i]
		return p.at > s.at || (p.at == s.at && p.seq > s.seq)
	})
	t.pending = append(t.pending, scheduled{})
	copy(t.pending[i+1:], t.pending[i:])
	t.pending[i] = s
}

// Advance moves the clock forward by dt and runs every action now due.
// Actions may schedule further actions; those run too if already due.
func (t *Timeline) Advance(dt time.Duration) int {
	if dt > 0 {
		t.now += dt
	}
	ran := 0
	for len(t.pending) > 0 && t.pending[0].at <= t.now {
		next := t.pending[0]
		t.pending = t.pending[1:]
		next.action()
		ran++
	}
	return ran
}

// Clear drops pending actions and rewinds the clock.
func (t *Timeline) Clear() {
	t.pending = nil
	t.now = 0
}
