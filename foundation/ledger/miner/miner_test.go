package miner_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/miner"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newTestMiner(t *testing.T, cfg miner.Config) *miner.Miner {
	t.Helper()

	wallet, err := signature.NewWallet("miner1")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a miner wallet: %v", failed, err)
	}

	return miner.New(cfg, wallet)
}

func TestMineBlock(t *testing.T) {
	t.Log("Given the need to validate proof of work mining.")
	{
		t.Logf("\tTest 0:\tWhen mining at a low difficulty.")
		{
			cfg := miner.DefaultConfig()
			cfg.Difficulty = 1

			m := newTestMiner(t, cfg)

			tx, err := database.NewTransaction("genesis", "alice", 100, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}

			result, err := m.MineBlock(context.Background(), 1, []database.Transaction{tx}, strings.Repeat("0", 64), "poh")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			if !strings.HasPrefix(result.Block.Hash, "0") {
				t.Fatalf("\t%s\tTest 0:\tShould produce a hash with a leading zero: got %s", failed, result.Block.Hash)
			}
			t.Logf("\t%s\tTest 0:\tShould produce a hash with a leading zero.", success)

			if err := result.Block.IsValid(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould produce a valid block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould produce a valid block.", success)

			if len(result.Block.Transactions) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould prepend the coinbase transaction: got %d", failed, len(result.Block.Transactions))
			}
			t.Logf("\t%s\tTest 0:\tShould prepend the coinbase transaction.", success)

			coinbase := result.Block.Transactions[0]
			if !coinbase.IsCoinbase() {
				t.Fatalf("\t%s\tTest 0:\tShould place the coinbase first.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould place the coinbase first.", success)

			if coinbase.To != m.Wallet().Address() || coinbase.Amount != cfg.BlockReward {
				t.Fatalf("\t%s\tTest 0:\tShould credit the reward to the miner wallet.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the reward to the miner wallet.", success)

			if result.Block.Miner == nil || *result.Block.Miner != m.Wallet().Address() {
				t.Fatalf("\t%s\tTest 0:\tShould stamp the miner address on the block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould stamp the miner address on the block.", success)
		}
	}
}

func TestMineBlockTimeout(t *testing.T) {
	t.Log("Given the need to bound how long a mining attempt can run.")
	{
		t.Logf("\tTest 0:\tWhen the search exceeds the block time limit.")
		{
			cfg := miner.DefaultConfig()
			cfg.Difficulty = 16
			cfg.MaxBlockTime = 50 * time.Millisecond

			m := newTestMiner(t, cfg)

			tx, err := database.NewTransaction("genesis", "alice", 100, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}

			_, err = m.MineBlock(context.Background(), 1, []database.Transaction{tx}, strings.Repeat("0", 64), "poh")

			var te *miner.TimeoutError
			if !errors.As(err, &te) {
				t.Fatalf("\t%s\tTest 0:\tShould fail with a timeout error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould fail with a timeout error.", success)

			if te.Elapsed < cfg.MaxBlockTime {
				t.Fatalf("\t%s\tTest 0:\tShould report the elapsed time past the limit.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the elapsed time past the limit.", success)
		}

		t.Logf("\tTest 1:\tWhen the context is canceled mid search.")
		{
			cfg := miner.DefaultConfig()
			cfg.Difficulty = 16

			m := newTestMiner(t, cfg)

			tx, err := database.NewTransaction("genesis", "alice", 100, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct a transaction: %v", failed, err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err = m.MineBlock(ctx, 1, []database.Transaction{tx}, strings.Repeat("0", 64), "poh")
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest 1:\tShould fail with the context error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould fail with the context error.", success)
		}
	}
}

func TestDifficultyAdjustment(t *testing.T) {
	makeBlocks := func(count int, spacing time.Duration) []database.Block {
		blocks := make([]database.Block, count)
		start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		for i := range blocks {
			blocks[i] = database.Block{
				Index:     uint64(i),
				Timestamp: start.Add(time.Duration(i) * spacing),
			}
		}
		return blocks
	}

	cfg := miner.DefaultConfig()
	cfg.DifficultyAdjustmentInterval = 10
	cfg.TargetBlockTime = time.Minute

	t.Log("Given the need to validate difficulty retargeting.")
	{
		m := newTestMiner(t, cfg)

		t.Logf("\tTest 0:\tWhen blocks arrive much faster than the target.")
		{
			blocks := makeBlocks(10, time.Second)
			if got := m.CalculateDifficultyAdjustment(blocks, 4); got != 5 {
				t.Fatalf("\t%s\tTest 0:\tShould raise difficulty by one: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould raise difficulty by one.", success)
		}

		t.Logf("\tTest 1:\tWhen blocks arrive much slower than the target.")
		{
			blocks := makeBlocks(10, 10*time.Minute)
			if got := m.CalculateDifficultyAdjustment(blocks, 4); got != 3 {
				t.Fatalf("\t%s\tTest 1:\tShould lower difficulty by one: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould lower difficulty by one.", success)

			if got := m.CalculateDifficultyAdjustment(blocks, 1); got != 1 {
				t.Fatalf("\t%s\tTest 1:\tShould never drop below one: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 1:\tShould never drop below one.", success)
		}

		t.Logf("\tTest 2:\tWhen blocks arrive near the target cadence.")
		{
			blocks := makeBlocks(10, time.Minute)
			if got := m.CalculateDifficultyAdjustment(blocks, 4); got != 4 {
				t.Fatalf("\t%s\tTest 2:\tShould leave difficulty unchanged: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 2:\tShould leave difficulty unchanged.", success)
		}

		t.Logf("\tTest 3:\tWhen a full window of blocks does not exist yet.")
		{
			blocks := makeBlocks(9, time.Second)
			if got := m.CalculateDifficultyAdjustment(blocks, 4); got != 4 {
				t.Fatalf("\t%s\tTest 3:\tShould leave difficulty unchanged: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 3:\tShould leave difficulty unchanged.", success)
		}
	}
}

func TestEstimateMiningTime(t *testing.T) {
	t.Log("Given the need to project mining time from a hash rate.")
	{
		t.Logf("\tTest 0:\tWhen estimating at various rates.")
		{
			m := newTestMiner(t, miner.DefaultConfig())

			// Difficulty 2 means 256 expected hashes.
			if got := m.EstimateMiningTime(2, 256); got != time.Second {
				t.Fatalf("\t%s\tTest 0:\tShould estimate one second at 256 H/s: got %v", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould estimate one second at 256 H/s.", success)

			if got := m.EstimateMiningTime(2, 0); got != time.Duration(1<<63-1) {
				t.Fatalf("\t%s\tTest 0:\tShould saturate on a zero hash rate: got %v", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould saturate on a zero hash rate.", success)
		}
	}
}

func TestStats(t *testing.T) {
	t.Log("Given the need to aggregate mining telemetry.")
	{
		t.Logf("\tTest 0:\tWhen folding in a mining result.")
		{
			cfg := miner.DefaultConfig()
			cfg.Difficulty = 1

			m := newTestMiner(t, cfg)

			tx, err := database.NewTransaction("genesis", "alice", 100, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}

			result, err := m.MineBlock(context.Background(), 1, []database.Transaction{tx}, strings.Repeat("0", 64), "poh")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}

			var stats miner.Stats
			stats.Update(result, cfg.Difficulty)

			if stats.TotalBlocksMined != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould count the mined block: got %d", failed, stats.TotalBlocksMined)
			}
			t.Logf("\t%s\tTest 0:\tShould count the mined block.", success)

			if stats.TotalRewards != cfg.BlockReward {
				t.Fatalf("\t%s\tTest 0:\tShould accumulate the block reward: got %v", failed, stats.TotalRewards)
			}
			t.Logf("\t%s\tTest 0:\tShould accumulate the block reward.", success)

			if stats.CurrentDifficulty != cfg.Difficulty {
				t.Fatalf("\t%s\tTest 0:\tShould record the difficulty used: got %d", failed, stats.CurrentDifficulty)
			}
			t.Logf("\t%s\tTest 0:\tShould record the difficulty used.", success)
		}
	}
}
