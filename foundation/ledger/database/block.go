package database

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// DefaultDifficulty is the number of leading hex zero characters a mined
// block hash must have when no explicit difficulty is chosen.
const DefaultDifficulty = 4

// GenesisDifficulty is the difficulty recorded on the genesis block.
const GenesisDifficulty = 1

// zeroHash is the previous hash carried by the genesis block.
var zeroHash = strings.Repeat("0", 64)

// =============================================================================

// Block is an ordered batch of transactions plus the chain linkage and
// proof-of-work metadata. The JSON field order is fixed because the block's
// own hash is computed over this encoding.
type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    time.Time     `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PrevHash     string        `json:"previous_hash"`
	Hash         string        `json:"hash"`
	PohHash      string        `json:"poh_hash"`
	Nonce        uint64        `json:"nonce"`
	Difficulty   uint32        `json:"difficulty"`
	Miner        *string       `json:"miner"`
}

// NewBlock constructs a block with the default difficulty and computes its
// content hash.
func NewBlock(index uint64, transactions []Transaction, prevHash string, pohHash string) Block {
	return NewBlockWithDifficulty(index, transactions, prevHash, pohHash, DefaultDifficulty)
}

// NewBlockWithDifficulty constructs a block with an explicit difficulty.
// The miner address is derived from the first coinbase transaction found.
func NewBlockWithDifficulty(index uint64, transactions []Transaction, prevHash string, pohHash string, difficulty uint32) Block {
	var miner *string
	for _, tx := range transactions {
		if tx.IsCoinbase() {
			to := tx.To
			miner = &to
			break
		}
	}

	b := Block{
		Index:        index,
		Timestamp:    time.Now().UTC(),
		Transactions: transactions,
		PrevHash:     prevHash,
		PohHash:      pohHash,
		Nonce:        0,
		Difficulty:   difficulty,
		Miner:        miner,
	}

	b.Hash = b.CalculateHash()

	return b
}

// GenesisBlock constructs the block at index 0: a single synthetic genesis
// transaction, a previous hash of 64 zeros, and difficulty 1. The caller
// still needs to record the transaction payload into the PoH clock and
// recompute the hash.
func GenesisBlock() Block {
	b := Block{
		Index:        0,
		Timestamp:    time.Now().UTC(),
		Transactions: []Transaction{GenesisTransaction()},
		PrevHash:     zeroHash,
		Nonce:        0,
		Difficulty:   GenesisDifficulty,
	}

	b.Hash = b.CalculateHash()

	return b
}

// =============================================================================

// hashableBlock mirrors Block with the hash field excluded by construction.
// Hashing through this view avoids mutating and restoring the real field,
// which is an easy source of non-determinism.
type hashableBlock struct {
	Index        uint64        `json:"index"`
	Timestamp    time.Time     `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PrevHash     string        `json:"previous_hash"`
	Hash         string        `json:"hash"`
	PohHash      string        `json:"poh_hash"`
	Nonce        uint64        `json:"nonce"`
	Difficulty   uint32        `json:"difficulty"`
	Miner        *string       `json:"miner"`
}

// CalculateHash computes the content hash: SHA256 over the canonical JSON
// of the block with the hash field blanked. Any change to any field,
// including the nonce, changes the result.
func (b Block) CalculateHash() string {
	hb := hashableBlock{
		Index:        b.Index,
		Timestamp:    b.Timestamp,
		Transactions: b.Transactions,
		PrevHash:     b.PrevHash,
		Hash:         "",
		PohHash:      b.PohHash,
		Nonce:        b.Nonce,
		Difficulty:   b.Difficulty,
		Miner:        b.Miner,
	}

	// Marshaling can only fail for types that can't occur here.
	data, err := json.Marshal(hb)
	if err != nil {
		return ""
	}

	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:])
}

// IsValid checks the block's own invariants: the stored hash matches the
// recomputed content hash, the transaction list is non-empty, and no
// transaction carries an empty address.
func (b Block) IsValid() error {
	if b.Hash != b.CalculateHash() {
		return &ValidationError{Index: b.Index, Reason: ReasonHashMismatch}
	}

	if len(b.Transactions) == 0 {
		return &ValidationError{Index: b.Index, Reason: ReasonEmptyTransactions}
	}

	for _, tx := range b.Transactions {
		if strings.TrimSpace(tx.From) == "" || strings.TrimSpace(tx.To) == "" {
			return &ValidationError{Index: b.Index, Reason: ReasonEmptyAddress}
		}
	}

	return nil
}

// TransactionData concatenates the canonical serialization of every
// transaction with comma separators. This is the payload fed to the PoH
// clock for the block.
func (b Block) TransactionData() (string, error) {
	parts := make([]string, len(b.Transactions))

	for i, tx := range b.Transactions {
		s, err := tx.Serialize()
		if err != nil {
			return "", err
		}
		parts[i] = s
	}

	return strings.Join(parts, ","), nil
}
