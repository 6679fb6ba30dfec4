package state

import (
	"context"
	"errors"

	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/miner"
)

// ErrNoTransactions is returned when a block is requested to be mined and
// there are no pending transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineNextBlock drains the mempool, performs the proof-of-work search, and
// links the winning block onto the chain. The nonce search itself runs
// outside the write lock; only the snapshot, the PoH tick, and the final
// append hold it.
func (s *State) MineNextBlock(ctx context.Context) (miner.Result, error) {
	s.evHandler("state: MineNextBlock: MINING: check mempool count")

	transactions := s.mempool.PickAll()
	if len(transactions) == 0 {
		return miner.Result{}, ErrNoTransactions
	}

	// Snapshot the chain head and mint the PoH tick for this batch.
	s.mu.Lock()
	latest, err := s.chain.LatestBlock()
	if err != nil {
		s.mu.Unlock()
		return miner.Result{}, err
	}

	pohHash, err := s.chain.RecordTransactions(transactions)
	if err != nil {
		s.mu.Unlock()
		return miner.Result{}, err
	}
	s.mu.Unlock()

	s.evHandler("state: MineNextBlock: MINING: perform POW: txs[%d] difficulty[%d]", len(transactions), s.Difficulty())

	result, err := s.miner.MineBlock(ctx, latest.Index+1, transactions, latest.Hash, pohHash)
	if err != nil {
		return miner.Result{}, err
	}

	s.evHandler("state: MineNextBlock: MINING: solved: nonce[%d] time[%v] rate[%d H/s]", result.Nonce, result.MiningTime, result.HashRate)

	if err := s.acceptMinedBlock(result); err != nil {
		return miner.Result{}, err
	}

	return result, nil
}

// acceptMinedBlock links the mined block, journals it, removes its
// transactions from the mempool, and applies the difficulty adjustment.
func (s *State) acceptMinedBlock(result miner.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.chain.AppendBlock(result.Block); err != nil {
		return err
	}

	if err := s.journalLatest(); err != nil {
		return err
	}

	for _, tx := range result.Block.Transactions {
		if !tx.IsCoinbase() {
			s.mempool.Delete(tx.ID)
		}
	}

	s.stats.Update(result, s.difficulty)

	newDifficulty := s.miner.CalculateDifficultyAdjustment(s.chain.Blocks(), s.difficulty)
	if newDifficulty != s.difficulty {
		s.evHandler("state: acceptMinedBlock: difficulty adjustment: %d -> %d", s.difficulty, newDifficulty)
		s.difficulty = newDifficulty
		s.miner.SetDifficulty(newDifficulty)
	}

	return nil
}

// =============================================================================

// Difficulty returns the difficulty the next mined block will target.
func (s *State) Difficulty() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.difficulty
}

// MiningStats returns a copy of the aggregate mining telemetry.
func (s *State) MiningStats() miner.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats
}

// MiningConfig returns the miner's configuration.
func (s *State) MiningConfig() miner.Config {
	return s.miner.Config()
}

// IsTimeout reports whether the error from a mining attempt was the time
// budget running out rather than a validation failure.
func IsTimeout(err error) bool {
	var te *miner.TimeoutError
	return errors.As(err, &te)
}

// Genesis returns the genesis block.
func (s *State) Genesis() database.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, _ := s.chain.BlockByIndex(0)
	return block
}
