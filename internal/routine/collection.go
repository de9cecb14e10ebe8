package routine

// Collection is the in-memory, ordered set of routines. It is not safe for
// concurrent use; the engine owns it and guards it with its own lock.
type Collection struct {
	items []*Timer
	index map[string]*Timer
}

func NewCollection() *Collection {
	return &Collection{index: make(map[string]*Timer)}
}

// Reconcile merges remote records into the collection. Local timers win:
// a record whose id matches a local timer's RemoteID leaves that timer
// untouched, and timers never stored remotely are kept. Timers whose
// RemoteID is missing from records are removed and their ids returned. The
// remaining records are appended under ids from newID; those without a
// usable duration are skipped and returned.
func (c *Collection) Reconcile(records []Record, newID func() string) (removed []string, skipped []Record) {
	listed := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.ID != "" {
			listed[rec.ID] = true
		}
	}

	known := make(map[string]bool, len(c.items))
	kept := c.items[:0]
	for _, t := range c.items {
		if t.RemoteID != "" && !listed[t.RemoteID] {
			delete(c.index, t.ID)
			removed = append(removed, t.ID)
			continue
		}
		if t.RemoteID != "" {
			known[t.RemoteID] = true
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = nil
	}
	c.items = kept

	for _, rec := range records {
		if rec.ID != "" && known[rec.ID] {
			continue
		}
		t, ok := FromRecord(newID(), rec)
		if !ok {
			skipped = append(skipped, rec)
			continue
		}
		c.Add(&t)
		known[rec.ID] = true
	}
	return removed, skipped
}

func (c *Collection) Add(t *Timer) {
	c.items = append(c.items, t)
	c.index[t.ID] = t
}

// Get returns the live timer for id, or nil.
func (c *Collection) Get(id string) *Timer {
	return c.index[id]
}

// Remove drops id and returns the removed timer, or nil when absent.
func (c *Collection) Remove(id string) *Timer {
	t, ok := c.index[id]
	if !ok {
		return nil
	}
	delete(c.index, id)
	for i, it := range c.items {
		if it == t {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return t
}

func (c *Collection) Len() int {
	return len(c.items)
}

// Snapshot copies every timer in insertion order.
func (c *Collection) Snapshot() []Timer {
	out := make([]Timer, len(c.items))
	for i, t := range c.items {
		out[i] = *t
	}
	return out
}
