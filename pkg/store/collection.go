package store

import (
	"sort"
	"sync"
)

// Entity is anything a Collection can hold.
type Entity interface {
	EntityID() int64
}

// Collection mirrors one server-owned list plus its selection state: the
// items in server order, an optional single selected id, and a multi-select
// id set. All transitions happen under one mutex so no caller can observe a
// half-applied change.
type Collection[T Entity] struct {
	mu          sync.RWMutex
	order       []int64
	items       map[int64]T
	selectedID  int64
	hasSelected bool
	selectedIDs map[int64]struct{}
}

func NewCollection[T Entity]() *Collection[T] {
	return &Collection[T]{
		items:       make(map[int64]T),
		selectedIDs: make(map[int64]struct{}),
	}
}

// ReplaceAll swaps in the server's list wholesale. Selection entries whose
// ids no longer exist are pruned in the same transition, so the selected
// item stays resolvable.
func (c *Collection[T]) ReplaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = c.order[:0]
	c.items = make(map[int64]T, len(items))
	for _, it := range items {
		id := it.EntityID()
		if _, dup := c.items[id]; !dup {
			c.order = append(c.order, id)
		}
		c.items[id] = it
	}
	if c.hasSelected {
		if _, ok := c.items[c.selectedID]; !ok {
			c.hasSelected = false
			c.selectedID = 0
		}
	}
	for id := range c.selectedIDs {
		if _, ok := c.items[id]; !ok {
			delete(c.selectedIDs, id)
		}
	}
}

// Upsert applies a server echo: replaces the item in place when known,
// appends it otherwise.
func (c *Collection[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := item.EntityID()
	if _, ok := c.items[id]; !ok {
		c.order = append(c.order, id)
	}
	c.items[id] = item
}

// Remove deletes the item and, in the same transition, clears the single
// selection if it pointed at the removed id and drops the id from the
// multi-select set. Splitting these up produces dangling selections.
func (c *Collection[T]) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.hasSelected && c.selectedID == id {
		c.hasSelected = false
		c.selectedID = 0
	}
	delete(c.selectedIDs, id)
}

// Select marks id as the single selected item. Unknown ids are refused so
// the selection always resolves to a live item.
func (c *Collection[T]) Select(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	c.selectedID = id
	c.hasSelected = true
	return true
}

func (c *Collection[T]) Deselect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasSelected = false
	c.selectedID = 0
}

// Selected returns the single selected item, if any.
func (c *Collection[T]) Selected() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	if !c.hasSelected {
		return zero, false
	}
	it, ok := c.items[c.selectedID]
	if !ok {
		return zero, false
	}
	return it, true
}

// Toggle flips membership of id in the multi-select set. Membership is
// independent of the collection contents; stale entries are pruned when the
// referent is removed, not here.
func (c *Collection[T]) Toggle(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.selectedIDs[id]; ok {
		delete(c.selectedIDs, id)
	} else {
		c.selectedIDs[id] = struct{}{}
	}
}

// SelectAll is the scoped toggle behind a table's select-all checkbox: when
// every given id is already selected it deselects exactly that subset,
// otherwise it unions the ids in. A paginated view therefore only ever
// affects the rows it shows.
func (c *Collection[T]) SelectAll(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := len(ids) > 0
	for _, id := range ids {
		if _, ok := c.selectedIDs[id]; !ok {
			all = false
			break
		}
	}
	if all {
		for _, id := range ids {
			delete(c.selectedIDs, id)
		}
		return
	}
	for _, id := range ids {
		c.selectedIDs[id] = struct{}{}
	}
}

// SetSelected replaces the multi-select set.
func (c *Collection[T]) SetSelected(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedIDs = make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		c.selectedIDs[id] = struct{}{}
	}
}

// SelectedIDs returns the multi-select set, ascending.
func (c *Collection[T]) SelectedIDs() []int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int64, 0, len(c.selectedIDs))
	for id := range c.selectedIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsSelected reports multi-select membership.
func (c *Collection[T]) IsSelected(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.selectedIDs[id]
	return ok
}

// Items returns a snapshot in server order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out
}

func (c *Collection[T]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[id]
	return it, ok
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
