// Package storage persists blocks and wallets in a badger key/value
// store. Blocks round-trip through their canonical JSON form verbatim;
// altering field order or dropping fields here would break the chain's
// self-hash on reload.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/pohchain/pohchain/foundation/ledger/database"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
)

// Key prefixes for the two record families.
const (
	blockPrefix  = "blk/"
	walletPrefix = "wal/"
)

// =============================================================================

// WalletRecord is the stored form of a wallet. Key material is kept hex
// encoded exactly as the signing layer serializes it.
type WalletRecord struct {
	Address    string    `json:"address"`
	Name       string    `json:"name"`
	PublicKey  string    `json:"public_key"`
	PrivateKey string    `json:"private_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// WalletInfo is the public listing form of a stored wallet.
type WalletInfo struct {
	Address   string    `json:"address"`
	Name      string    `json:"name"`
	PublicKey string    `json:"public_key"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================

// Storage provides access to the on-disk representation of the chain.
type Storage struct {
	db *badger.DB
}

// New opens or creates the store at the specified path. An empty path
// opens an in-memory store, which the tests rely on.
func New(path string) (*Storage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying store.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Reset drops all stored blocks and wallets.
func (s *Storage) Reset() error {
	return s.db.DropAll()
}

// =============================================================================

// WriteBlock persists a block under its index.
func (s *Storage) WriteBlock(block database.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("marshaling block %d: %w", block.Index, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blockKey(block.Index), data)
	})
}

// ReadAllBlocks returns every stored block in index order. Keys are zero
// padded so badger's lexicographic iteration yields chain order.
func (s *Storage) ReadAllBlocks() ([]database.Block, error) {
	var blocks []database.Block

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(blockPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var block database.Block
			if err := json.Unmarshal(data, &block); err != nil {
				return fmt.Errorf("unmarshaling block: %w", err)
			}

			blocks = append(blocks, block)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// =============================================================================

// SaveWallet persists a wallet keyed by its address.
func (s *Storage) SaveWallet(w signature.Wallet) error {
	rec := WalletRecord{
		Address:    w.Address(),
		Name:       w.Name,
		PublicKey:  w.KeyPair.PublicKey().String(),
		PrivateKey: fmt.Sprintf("%x", w.KeyPair.PrivateKeyBytes()),
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling wallet %q: %w", w.Name, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(walletPrefix+rec.Address), data)
	})
}

// ReadWallet returns the stored wallet record for the specified address.
func (s *Storage) ReadWallet(address string) (WalletRecord, error) {
	var rec WalletRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(walletPrefix + address))
		if err != nil {
			return err
		}

		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return WalletRecord{}, fmt.Errorf("reading wallet %q: %w", address, err)
	}

	return rec, nil
}

// ListWallets returns the public information for every stored wallet.
func (s *Storage) ListWallets() ([]WalletInfo, error) {
	var wallets []WalletInfo

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(walletPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			var rec WalletRecord
			if err := json.Unmarshal(data, &rec); err != nil {
				return fmt.Errorf("unmarshaling wallet: %w", err)
			}

			wallets = append(wallets, WalletInfo{
				Address:   rec.Address,
				Name:      rec.Name,
				PublicKey: rec.PublicKey,
				CreatedAt: rec.CreatedAt,
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return wallets, nil
}

// =============================================================================

// blockKey builds a zero padded key so iteration order matches chain order.
func blockKey(index uint64) []byte {
	return []byte(fmt.Sprintf("%s%016d", blockPrefix, index))
}
