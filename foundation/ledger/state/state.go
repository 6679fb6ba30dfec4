// Package state is the core API for the ledger node and implements all the
// business rules and processing. It is the exclusive owner of the chain;
// every read and write is mediated through its read/write lock.
package state

import (
	"sync"

	"github.com/pohchain/pohchain/foundation/ledger/contract"
	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/mempool"
	"github.com/pohchain/pohchain/foundation/ledger/miner"
	"github.com/pohchain/pohchain/foundation/ledger/peer"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
	"github.com/pohchain/pohchain/foundation/ledger/storage"
)

// EventHandler defines a function that is called when events occur in the
// processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for background mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the ledger node.
type Config struct {
	MinerWallet signature.Wallet
	Host        string
	Mining      miner.Config
	Storage     *storage.Storage
	KnownPeers  *peer.Set
	EvHandler   EventHandler
}

// State manages the ledger node.
type State struct {
	minerWallet signature.Wallet
	host        string
	evHandler   EventHandler

	mu         sync.RWMutex
	chain      *database.Chain
	difficulty uint32
	stats      miner.Stats

	mempool    *mempool.Mempool
	storage    *storage.Storage
	miner      *miner.Miner
	knownPeers *peer.Set
	engine     *contract.Engine

	Worker Worker
}

// New constructs the state value for managing the ledger. A fresh chain is
// built from genesis and the genesis block is journaled to storage.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	chain, err := database.New()
	if err != nil {
		return nil, err
	}

	genesis, err := chain.LatestBlock()
	if err != nil {
		return nil, err
	}

	if cfg.Storage != nil {
		if err := cfg.Storage.WriteBlock(genesis); err != nil {
			return nil, err
		}
	}

	s := State{
		minerWallet: cfg.MinerWallet,
		host:        cfg.Host,
		evHandler:   ev,

		chain:      chain,
		difficulty: cfg.Mining.Difficulty,

		mempool:    mempool.New(),
		storage:    cfg.Storage,
		miner:      miner.New(cfg.Mining, cfg.MinerWallet),
		knownPeers: cfg.KnownPeers,
		engine:     contract.NewEngine(),
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &s, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	defer func() {
		if s.storage != nil {
			s.storage.Close()
		}
	}()

	// Stop all block writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// =============================================================================

// Host returns the host this node is running on.
func (s *State) Host() string {
	return s.host
}

// MinerAddress returns the address collecting mining rewards.
func (s *State) MinerAddress() string {
	return s.minerWallet.Address()
}

// KnownPeers returns a copy of the known peer set.
func (s *State) KnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer adds a peer to the known set.
func (s *State) AddKnownPeer(p peer.Peer) bool {
	return s.knownPeers.Add(p)
}

// Contracts returns the contract engine.
func (s *State) Contracts() *contract.Engine {
	return s.engine
}
