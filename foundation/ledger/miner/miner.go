// Package miner implements the proof-of-work search that produces new
// blocks, including the difficulty adjustment based on recent block
// cadence.
package miner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
)

// coinbasePayload is the fixed payload the miner signs for the reward
// transaction. The reward is trusted by convention, not by this signature.
var coinbasePayload = []byte("coinbase")

// =============================================================================

// TimeoutError indicates a mining attempt ran past the configured time
// budget. The caller may retry with adjusted difficulty or abandon the
// attempt; the miner never retries on its own.
type TimeoutError struct {
	Elapsed time.Duration
	Limit   time.Duration
}

// Error implements the error interface.
func (te *TimeoutError) Error() string {
	return fmt.Sprintf("mining timeout exceeded: %v elapsed, %v allowed", te.Elapsed, te.Limit)
}

// =============================================================================

// Config holds the tunables for mining operations.
type Config struct {
	Difficulty                   uint32
	BlockReward                  float64
	MaxBlockTime                 time.Duration
	DifficultyAdjustmentInterval int
	TargetBlockTime              time.Duration
}

// DefaultConfig returns the standard mining configuration.
func DefaultConfig() Config {
	return Config{
		Difficulty:                   database.DefaultDifficulty,
		BlockReward:                  50,
		MaxBlockTime:                 10 * time.Minute,
		DifficultyAdjustmentInterval: 10,
		TargetBlockTime:              time.Minute,
	}
}

// Result carries the outcome and telemetry of a successful mining attempt.
type Result struct {
	Block      database.Block
	MiningTime time.Duration
	HashRate   uint64
	Nonce      uint64
}

// =============================================================================

// Miner performs bounded proof-of-work searches on behalf of a wallet
// that collects the block rewards.
type Miner struct {
	cfg    Config
	wallet signature.Wallet
}

// New constructs a miner for the specified wallet.
func New(cfg Config, wallet signature.Wallet) *Miner {
	return &Miner{
		cfg:    cfg,
		wallet: wallet,
	}
}

// Config returns the miner's configuration.
func (m *Miner) Config() Config {
	return m.cfg
}

// Wallet returns the wallet collecting block rewards.
func (m *Miner) Wallet() signature.Wallet {
	return m.wallet
}

// SetDifficulty updates the difficulty used for subsequent attempts.
func (m *Miner) SetDifficulty(difficulty uint32) {
	m.cfg.Difficulty = difficulty
}

// =============================================================================

// MineBlock prepends the coinbase reward transaction, then searches nonce
// values from zero until the block hash carries the required number of
// leading hex zeros. The search is a tight CPU bound loop; run it off any
// latency sensitive path. It stops with a TimeoutError once MaxBlockTime
// has elapsed, or with the context error if the context is canceled.
func (m *Miner) MineBlock(ctx context.Context, index uint64, transactions []database.Transaction, prevHash string, pohHash string) (Result, error) {
	coinbase, err := database.NewSignedTransaction(
		database.MinerAccount,
		m.wallet.Address(),
		m.cfg.BlockReward,
		ref("Block reward"),
		m.wallet.SignTransaction(coinbasePayload),
		m.wallet.KeyPair.PublicKey(),
	)
	if err != nil {
		return Result{}, err
	}

	blockTransactions := make([]database.Transaction, 0, len(transactions)+1)
	blockTransactions = append(blockTransactions, coinbase)
	blockTransactions = append(blockTransactions, transactions...)

	block := database.NewBlockWithDifficulty(index, blockTransactions, prevHash, pohHash, m.cfg.Difficulty)

	target := strings.Repeat("0", int(m.cfg.Difficulty))
	start := time.Now()

	var nonce uint64
	for {
		block.Nonce = nonce
		hash := block.CalculateHash()

		if strings.HasPrefix(hash, target) {
			block.Hash = hash
			elapsed := time.Since(start)

			hashRate := nonce
			if secs := uint64(elapsed.Seconds()); secs > 0 {
				hashRate = nonce / secs
			}

			return Result{
				Block:      block,
				MiningTime: elapsed,
				HashRate:   hashRate,
				Nonce:      nonce,
			}, nil
		}

		nonce++

		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if elapsed := time.Since(start); elapsed > m.cfg.MaxBlockTime {
			return Result{}, &TimeoutError{Elapsed: elapsed, Limit: m.cfg.MaxBlockTime}
		}
	}
}

// =============================================================================

// CalculateDifficultyAdjustment compares the actual time taken over the
// most recent adjustment window against the target cadence. A chain
// running twice as fast as the target raises difficulty by one; a chain
// running half as fast lowers it by one with a floor of one. Until a full
// window of blocks exists the difficulty is left unchanged.
func (m *Miner) CalculateDifficultyAdjustment(blocks []database.Block, currentDifficulty uint32) uint32 {
	interval := m.cfg.DifficultyAdjustmentInterval
	if len(blocks) < interval || interval < 2 {
		return currentDifficulty
	}

	window := blocks[len(blocks)-interval:]
	timeTaken := window[len(window)-1].Timestamp.Sub(window[0].Timestamp)
	expected := m.cfg.TargetBlockTime * time.Duration(interval)

	ratio := timeTaken.Seconds() / expected.Seconds()

	switch {
	case ratio < 0.5:
		return currentDifficulty + 1
	case ratio > 2.0:
		if currentDifficulty > 1 {
			return currentDifficulty - 1
		}
		return 1
	default:
		return currentDifficulty
	}
}

// EstimateMiningTime projects how long a search at the specified
// difficulty would take at the given hash rate.
func (m *Miner) EstimateMiningTime(difficulty uint32, hashRate uint64) time.Duration {
	if hashRate == 0 {
		return time.Duration(1<<63 - 1)
	}

	targetHashes := uint64(1)
	for i := uint32(0); i < difficulty; i++ {
		targetHashes *= 16
	}

	return time.Duration(targetHashes/hashRate) * time.Second
}

// =============================================================================

// Stats aggregates telemetry across mining attempts.
type Stats struct {
	TotalBlocksMined  uint64        `json:"total_blocks_mined"`
	TotalMiningTime   time.Duration `json:"total_mining_time"`
	AverageHashRate   uint64        `json:"average_hash_rate"`
	TotalRewards      float64       `json:"total_rewards"`
	CurrentDifficulty uint32        `json:"current_difficulty"`
}

// Update folds a successful mining result into the aggregate.
func (s *Stats) Update(result Result, difficulty uint32) {
	s.TotalBlocksMined++
	s.TotalMiningTime += result.MiningTime
	s.CurrentDifficulty = difficulty

	for _, tx := range result.Block.Transactions {
		if tx.IsCoinbase() {
			s.TotalRewards += tx.Amount
		}
	}

	if secs := uint64(s.TotalMiningTime.Seconds()); secs > 0 {
		s.AverageHashRate = result.Nonce / secs
	}
}

// ref returns a pointer to the provided string for optional fields.
func ref(s string) *string {
	return &s
}
