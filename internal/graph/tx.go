package graph

// Tx is a logical transaction over a Store.
//
// All mutations go to a private copy returned by Store(). Commit publishes
// the copy; Rollback (or simply dropping the Tx) discards it. A Tx is
// single-use.
type Tx struct {
	base *Store
	work *Store
	done bool
}

// Begin starts a transaction.
func (s *Store) Begin() *Tx {
	return &Tx{base: s, work: s.Clone()}
}

// Store returns the working copy the transaction mutates.
func (tx *Tx) Store() *Store {
	return tx.work
}

// Commit publishes the working copy. Committing twice is a no-op.
func (tx *Tx) Commit() {
	if tx.done {
		return
	}
	*tx.base = *tx.work
	tx.done = true
}

// Rollback discards the working copy.
func (tx *Tx) Rollback() {
	tx.done = true
}

// Restore replaces the contents of s with a copy of snapshot.
func (s *Store) Restore(snapshot *Store) {
	*s = *snapshot.Clone()
}
