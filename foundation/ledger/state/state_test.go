package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/miner"
	"github.com/pohchain/pohchain/foundation/ledger/peer"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
	"github.com/pohchain/pohchain/foundation/ledger/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newTestState(t *testing.T) *state.State {
	t.Helper()

	wallet, err := signature.NewWallet("miner1")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create a miner wallet: %v", failed, err)
	}

	cfg := miner.DefaultConfig()
	cfg.Difficulty = 1
	cfg.MaxBlockTime = 10 * time.Second

	st, err := state.New(state.Config{
		MinerWallet: wallet,
		Host:        "0.0.0.0:9080",
		Mining:      cfg,
		KnownPeers:  peer.NewSet(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	t.Cleanup(func() { st.Shutdown() })

	return st
}

func TestSubmitTransaction(t *testing.T) {
	t.Log("Given the need to validate transaction submission.")
	{
		t.Logf("\tTest 0:\tWhen submitting a signed user transaction.")
		{
			st := newTestState(t)

			wallet, err := signature.NewWallet("alice")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create a wallet: %v", failed, err)
			}

			tx, err := database.NewTransaction(wallet.Address(), "bob", 25, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}
			if err := tx.Sign(wallet); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to sign the transaction: %v", failed, err)
			}

			if err := st.SubmitTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the signed transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the signed transaction.", success)

			if st.MempoolCount() != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould hold the transaction in the mempool: got %d", failed, st.MempoolCount())
			}
			t.Logf("\t%s\tTest 0:\tShould hold the transaction in the mempool.", success)
		}

		t.Logf("\tTest 1:\tWhen submitting an unsigned user transaction.")
		{
			st := newTestState(t)

			tx, err := database.NewTransaction("aaaaaaaaaaaaaaaa", "bob", 25, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct a transaction: %v", failed, err)
			}

			if err := st.SubmitTransaction(tx); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject the unsigned transaction.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject the unsigned transaction.", success)

			if st.MempoolCount() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould leave the mempool empty: got %d", failed, st.MempoolCount())
			}
			t.Logf("\t%s\tTest 1:\tShould leave the mempool empty.", success)
		}
	}
}

func TestMineNextBlock(t *testing.T) {
	t.Log("Given the need to validate the mining workflow.")
	{
		t.Logf("\tTest 0:\tWhen mining with pending transactions.")
		{
			st := newTestState(t)

			tx, err := database.NewTransaction("genesis", "alice", 100, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}
			if err := st.SubmitTransaction(tx); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould accept the genesis transaction: %v", failed, err)
			}

			result, err := st.MineNextBlock(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine the next block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine the next block.", success)

			info := st.ChainInfo()
			if info.Length != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould link the mined block: got %d blocks", failed, info.Length)
			}
			t.Logf("\t%s\tTest 0:\tShould link the mined block.", success)

			if !info.IsValid {
				t.Fatalf("\t%s\tTest 0:\tShould keep the chain valid.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the chain valid.", success)

			if st.MempoolCount() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould drain the mined transactions: got %d", failed, st.MempoolCount())
			}
			t.Logf("\t%s\tTest 0:\tShould drain the mined transactions.", success)

			if got := st.Balance("alice"); got != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould credit alice with 100: got %v", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould credit alice with 100.", success)

			reward := st.MiningConfig().BlockReward
			if got := st.Balance(st.MinerAddress()); got != reward {
				t.Fatalf("\t%s\tTest 0:\tShould credit the miner the block reward: got %v", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould credit the miner the block reward.", success)

			stats := st.MiningStats()
			if stats.TotalBlocksMined != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould record one mined block: got %d", failed, stats.TotalBlocksMined)
			}
			t.Logf("\t%s\tTest 0:\tShould record one mined block.", success)

			if _, found := st.TransactionByID(result.Block.Transactions[0].ID); !found {
				t.Fatalf("\t%s\tTest 0:\tShould find the committed coinbase by id.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find the committed coinbase by id.", success)
		}

		t.Logf("\tTest 1:\tWhen mining with an empty mempool.")
		{
			st := newTestState(t)

			if _, err := st.MineNextBlock(context.Background()); !errors.Is(err, state.ErrNoTransactions) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to mine an empty block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to mine an empty block.", success)
		}
	}
}

func TestAppendBlock(t *testing.T) {
	t.Log("Given the need to validate direct block appends.")
	{
		t.Logf("\tTest 0:\tWhen appending transfers without the miner.")
		{
			st := newTestState(t)

			tx, err := database.NewTransaction("genesis", "alice", 100, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct a transaction: %v", failed, err)
			}

			if err := st.AppendBlock([]database.Transaction{tx}); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to append a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append a block.", success)

			if err := st.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould keep the chain valid: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould keep the chain valid.", success)

			if err := st.AppendBlock(nil); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould reject an empty transaction set.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject an empty transaction set.", success)
		}
	}
}

func TestPeers(t *testing.T) {
	t.Log("Given the need to track known peers.")
	{
		t.Logf("\tTest 0:\tWhen adding peers to the node.")
		{
			st := newTestState(t)

			if !st.AddKnownPeer(peer.New("0.0.0.0:9180")) {
				t.Fatalf("\t%s\tTest 0:\tShould add a new peer.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould add a new peer.", success)

			if st.AddKnownPeer(peer.New("0.0.0.0:9180")) {
				t.Fatalf("\t%s\tTest 0:\tShould not add a duplicate peer.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould not add a duplicate peer.", success)

			// The node's own host is excluded from the copy.
			st.AddKnownPeer(peer.New("0.0.0.0:9080"))
			if got := len(st.KnownPeers()); got != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould exclude the node itself: got %d", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould exclude the node itself.", success)
		}
	}
}
