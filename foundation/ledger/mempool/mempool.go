// Package mempool maintains the pool of transactions waiting to be mined
// into a block. Admission control is deduplication by transaction id and
// nothing more.
package mempool

import (
	"sort"
	"sync"

	"github.com/pohchain/pohchain/foundation/ledger/database"
)

// Mempool represents a cache of pending transactions keyed by id.
type Mempool struct {
	pool map[string]database.Transaction
	mu   sync.RWMutex
}

// New constructs a new mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Transaction),
	}
}

// Count returns the current number of transactions in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the pool. A transaction
// resubmitted with the same id overwrites the earlier copy.
func (mp *Mempool) Upsert(tx database.Transaction) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx

	return len(mp.pool)
}

// Delete removes a transaction from the pool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Transaction)
}

// PickAll returns every pending transaction ordered by timestamp so block
// contents don't depend on map iteration order.
func (mp *Mempool) PickAll() []database.Transaction {
	mp.mu.RLock()
	txs := make([]database.Transaction, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx)
	}
	mp.mu.RUnlock()

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})

	return txs
}
