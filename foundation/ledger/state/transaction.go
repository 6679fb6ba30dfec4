package state

import (
	"fmt"

	"github.com/pohchain/pohchain/foundation/ledger/database"
)

// SubmitTransaction accepts a transaction into the mempool after checking
// its cryptographic authorship. Duplicate ids overwrite the earlier copy.
func (s *State) SubmitTransaction(tx database.Transaction) error {
	s.evHandler("state: SubmitTransaction: started : tx[%s]", tx)

	if !tx.VerifySignature() {
		return fmt.Errorf("transaction %q failed signature verification", tx.ID)
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("state: SubmitTransaction: mempool[%d]", n)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}

// MempoolTransactions returns the pending transactions in timestamp order.
func (s *State) MempoolTransactions() []database.Transaction {
	return s.mempool.PickAll()
}

// MempoolCount returns the number of pending transactions.
func (s *State) MempoolCount() int {
	return s.mempool.Count()
}

// =============================================================================

// AppendBlock builds and links a block directly from the specified
// transactions using the default difficulty, bypassing the miner.
func (s *State) AppendBlock(transactions []database.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chain.Append(transactions); err != nil {
		return err
	}

	return s.journalLatest()
}

// journalLatest writes the head block through to storage. Callers must
// hold the write lock.
func (s *State) journalLatest() error {
	if s.storage == nil {
		return nil
	}

	latest, err := s.chain.LatestBlock()
	if err != nil {
		return err
	}

	return s.storage.WriteBlock(latest)
}
