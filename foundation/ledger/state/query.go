package state

import (
	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
	"github.com/pohchain/pohchain/foundation/ledger/storage"
)

// Info summarizes the chain for status reporting.
type Info struct {
	Length            int    `json:"length"`
	LatestHash        string `json:"latest_hash"`
	LatestBlockIndex  uint64 `json:"latest_block_index"`
	TotalTransactions int    `json:"total_transactions"`
	IsValid           bool   `json:"is_valid"`
	Difficulty        uint32 `json:"difficulty"`
	PohTickCount      uint64 `json:"poh_tick_count"`
}

// =============================================================================

// ChainInfo returns a summary of the current chain.
func (s *State) ChainInfo() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest, err := s.chain.LatestBlock()
	if err != nil {
		return Info{}
	}

	var total int
	for _, block := range s.chain.Blocks() {
		total += len(block.Transactions)
	}

	return Info{
		Length:            s.chain.Len(),
		LatestHash:        latest.Hash,
		LatestBlockIndex:  latest.Index,
		TotalTransactions: total,
		IsValid:           s.chain.IsChainValid() == nil,
		Difficulty:        s.difficulty,
		PohTickCount:      s.chain.TickCount(),
	}
}

// Blocks returns a copy of the ordered block sequence.
func (s *State) Blocks() []database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Blocks()
}

// BlockByIndex returns the block at the specified index.
func (s *State) BlockByIndex(index uint64) (database.Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.BlockByIndex(index)
}

// LatestBlock returns the block at the head of the chain.
func (s *State) LatestBlock() (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.LatestBlock()
}

// Balance replays the chain to compute the balance for an address.
func (s *State) Balance(address string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.Balance(address)
}

// Validate re-verifies the whole chain from genesis.
func (s *State) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.chain.IsChainValid()
}

// TransactionByID scans the chain for a transaction with the specified id.
func (s *State) TransactionByID(id string) (database.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, block := range s.chain.Blocks() {
		for _, tx := range block.Transactions {
			if tx.ID == id {
				return tx, true
			}
		}
	}

	return database.Transaction{}, false
}

// =============================================================================

// UpsertWallet persists a wallet through the storage collaborator.
func (s *State) UpsertWallet(w signature.Wallet) error {
	if s.storage == nil {
		return nil
	}

	return s.storage.SaveWallet(w)
}

// Wallets returns the public information for every stored wallet.
func (s *State) Wallets() ([]storage.WalletInfo, error) {
	if s.storage == nil {
		return nil, nil
	}

	return s.storage.ListWallets()
}

// Wallet returns the stored record for the specified address.
func (s *State) Wallet(address string) (storage.WalletRecord, error) {
	return s.storage.ReadWallet(address)
}
