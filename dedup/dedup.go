// Package dedup guards lookups by id against duplicate in-flight requests.
package dedup

// Deduplicator tracks which user ids are being fetched and which are already
// known. Owned by the session tick; no locking.
type Deduplicator struct {
	pending  map[int64]struct{}
	resolved map[int64]struct{}
}

func New() *Deduplicator {
	return &Deduplicator{
		pending:  make(map[int64]struct{}),
		resolved: make(map[int64]struct{}),
	}
}

// Begin reports whether a fetch for id should go out. When it returns true the
// id is now pending and the caller must issue the fetch, or call Abandon.
func (d *Deduplicator) Begin(id int64) bool {
	if _, ok := d.resolved[id]; ok {
		return false
	}
	if _, ok := d.pending[id]; ok {
		return false
	}
	d.pending[id] = struct{}{}
	return true
}

// Resolve ends the pending fetch for id. found marks the id as known; a
// not-found or failed fetch leaves it free to be retried.
func (d *Deduplicator) Resolve(id int64, found bool) {
	delete(d.pending, id)
	if found {
		d.resolved[id] = struct{}{}
	}
}

// Abandon drops a pending id whose fetch never went out.
func (d *Deduplicator) Abandon(id int64) {
	delete(d.pending, id)
}

// MarkResolved records id as known without a fetch, e.g. from a search result.
func (d *Deduplicator) MarkResolved(id int64) {
	d.resolved[id] = struct{}{}
}

// Forget drops id from the known set so the next Begin fetches it again.
func (d *Deduplicator) Forget(id int64) {
	delete(d.resolved, id)
}

func (d *Deduplicator) Pending(id int64) bool {
	_, ok := d.pending[id]
	return ok
}

func (d *Deduplicator) Resolved(id int64) bool {
	_, ok := d.resolved[id]
	return ok
}

// PendingLen returns the size of the pending set.
func (d *Deduplicator) PendingLen() int {
	return len(d.pending)
}
