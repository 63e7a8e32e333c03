// Package mem provides a process-local document store for the memory driver.
// It mirrors what the durable backend offers at a much smaller contract:
// named collections of documents, monotonic sequences, and atomic
// multi-collection mutations
package mem

import (
	"sort"
	"sync"
)

// DB is the shared document store
// all repos on the memory driver operate on the same DB so cross-module
// reads observe a single consistent state
type DB struct {
	mu   sync.RWMutex
	cols map[string]map[string]any
	seqs map[string]int64
}

// New returns an empty DB
func New() *DB {
	return &DB{
		cols: make(map[string]map[string]any),
		seqs: make(map[string]int64),
	}
}

// Tx is a handle valid only inside Update or View
// it must not escape the callback
type Tx struct {
	db    *DB
	write bool
}

// Update runs fn under the write lock
// mutations are atomic with respect to every other Update and View
func (d *DB) Update(fn func(tx *Tx) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(&Tx{db: d, write: true})
}

// View runs fn under the read lock
func (d *DB) View(fn func(tx *Tx) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return fn(&Tx{db: d})
}

// Put upserts a document by id
func (t *Tx) Put(col, id string, doc any) {
	if !t.write {
		panic("mem: Put inside View")
	}
	c, ok := t.db.cols[col]
	if !ok {
		c = make(map[string]any)
		t.db.cols[col] = c
	}
	c[id] = doc
}

// Get returns a document by id
func (t *Tx) Get(col, id string) (any, bool) {
	doc, ok := t.db.cols[col][id]
	return doc, ok
}

// Delete removes a document by id and reports whether it existed
func (t *Tx) Delete(col, id string) bool {
	if !t.write {
		panic("mem: Delete inside View")
	}
	c, ok := t.db.cols[col]
	if !ok {
		return false
	}
	if _, ok := c[id]; !ok {
		return false
	}
	delete(c, id)
	return true
}

// Len reports how many documents a collection holds
func (t *Tx) Len(col string) int { return len(t.db.cols[col]) }

// Scan visits every document in id order
// fn returns false to stop early
func (t *Tx) Scan(col string, fn func(id string, doc any) bool) {
	c := t.db.cols[col]
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !fn(id, c[id]) {
			return
		}
	}
}

// DeleteWhere removes every document matching pred and returns the count
func (t *Tx) DeleteWhere(col string, pred func(id string, doc any) bool) int {
	if !t.write {
		panic("mem: DeleteWhere inside View")
	}
	c := t.db.cols[col]
	n := 0
	for id, doc := range c {
		if pred(id, doc) {
			delete(c, id)
			n++
		}
	}
	return n
}

// NextSeq increments and returns the named sequence, starting at 1
func (t *Tx) NextSeq(name string) int64 {
	if !t.write {
		panic("mem: NextSeq inside View")
	}
	t.db.seqs[name]++
	return t.db.seqs[name]
}
