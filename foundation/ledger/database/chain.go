// Package database implements the block and transaction data structures
// and the hash linked chain that owns them.
package database

import (
	"strconv"
	"strings"

	"github.com/pohchain/pohchain/foundation/ledger/poh"
)

// Chain is the canonical ordered sequence of blocks. It owns the blocks
// and the PoH recorder exclusively and only ever grows by append. Access
// from multiple goroutines must be mediated by the owner, the state
// package wraps the chain behind a read/write lock.
type Chain struct {
	blocks   []Block
	recorder *poh.Recorder
}

// New constructs a chain holding only the genesis block. The genesis
// transaction payload is recorded into a fresh PoH clock and the genesis
// hash is recomputed afterward since the poh hash changes it.
func New() (*Chain, error) {
	recorder := poh.NewRecorder()
	genesis := GenesisBlock()

	transactionData, err := genesis.TransactionData()
	if err != nil {
		return nil, err
	}

	genesis.PohHash = recorder.Record(transactionData)
	genesis.Hash = genesis.CalculateHash()

	c := Chain{
		blocks:   []Block{genesis},
		recorder: recorder,
	}

	return &c, nil
}

// =============================================================================

// Append validates and links a new block built from the specified
// transactions. Either the block is accepted as a whole or the chain is
// left unchanged.
func (c *Chain) Append(transactions []Transaction) error {
	if len(transactions) == 0 {
		return &ValidationError{Index: c.nextIndex(), Reason: ReasonEmptyTransactions}
	}

	latest, err := c.LatestBlock()
	if err != nil {
		return err
	}

	pohHash, err := c.RecordTransactions(transactions)
	if err != nil {
		return err
	}

	block := NewBlock(latest.Index+1, transactions, latest.Hash, pohHash)

	if err := block.IsValid(); err != nil {
		return err
	}

	c.blocks = append(c.blocks, block)

	return nil
}

// AppendBlock links a fully constructed block, typically one produced by
// the miner, onto the chain. The block is checked for individual validity
// and for linkage against the latest block before anything is mutated.
func (c *Chain) AppendBlock(block Block) error {
	latest, err := c.LatestBlock()
	if err != nil {
		return err
	}

	if err := block.IsValid(); err != nil {
		return err
	}

	if block.PrevHash != latest.Hash {
		return &ValidationError{Index: block.Index, Reason: ReasonBadLinkage, Exp: latest.Hash, Got: block.PrevHash}
	}

	if block.Index != latest.Index+1 {
		return &ValidationError{
			Index:  block.Index,
			Reason: ReasonBadIndex,
			Exp:    strconv.FormatUint(latest.Index+1, 10),
			Got:    strconv.FormatUint(block.Index, 10),
		}
	}

	c.blocks = append(c.blocks, block)

	return nil
}

// RecordTransactions serializes the transactions the way a block will and
// records the payload into the PoH clock, returning the new tick's hash.
// The clock advances even if the block the hash was minted for is later
// rejected; ticks are independent of block acceptance.
func (c *Chain) RecordTransactions(transactions []Transaction) (string, error) {
	parts := make([]string, len(transactions))

	for i, tx := range transactions {
		s, err := tx.Serialize()
		if err != nil {
			return "", err
		}
		parts[i] = s
	}

	return c.recorder.Record(strings.Join(parts, ",")), nil
}

// =============================================================================

// LatestBlock returns the block at the head of the chain.
func (c *Chain) LatestBlock() (Block, error) {
	if len(c.blocks) == 0 {
		return Block{}, &EmptyChainError{}
	}

	return c.blocks[len(c.blocks)-1], nil
}

// Blocks returns a copy of the ordered block sequence.
func (c *Chain) Blocks() []Block {
	blocks := make([]Block, len(c.blocks))
	copy(blocks, c.blocks)

	return blocks
}

// BlockByIndex returns the block at the specified index.
func (c *Chain) BlockByIndex(index uint64) (Block, bool) {
	if index >= uint64(len(c.blocks)) {
		return Block{}, false
	}

	return c.blocks[index], true
}

// Len returns the number of blocks in the chain.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// TickCount returns the number of PoH ticks recorded by the chain's clock.
func (c *Chain) TickCount() uint64 {
	return c.recorder.TickCount()
}

// =============================================================================

// IsChainValid walks every block checking individual validity, previous
// hash linkage, and index contiguity. The returned error identifies the
// first offending block.
func (c *Chain) IsChainValid() error {
	if len(c.blocks) == 0 {
		return &EmptyChainError{}
	}

	for i, block := range c.blocks {
		if err := block.IsValid(); err != nil {
			return err
		}

		if i == 0 {
			continue
		}

		previous := c.blocks[i-1]

		if block.PrevHash != previous.Hash {
			return &ValidationError{Index: block.Index, Reason: ReasonBadLinkage, Exp: previous.Hash, Got: block.PrevHash}
		}

		if block.Index != previous.Index+1 {
			return &ValidationError{
				Index:  block.Index,
				Reason: ReasonBadIndex,
				Exp:    strconv.FormatUint(previous.Index+1, 10),
				Got:    strconv.FormatUint(block.Index, 10),
			}
		}
	}

	return nil
}

// Balance replays every transaction in chain order, crediting the to
// address and debiting the from address. The genesis account is exempt
// from deduction. The replay is linear in the total transaction count; no
// incremental index is maintained at this scale.
func (c *Chain) Balance(address string) float64 {
	var balance float64

	for _, block := range c.blocks {
		for _, tx := range block.Transactions {
			if tx.To == address {
				balance += tx.Amount
			}
			if tx.From == address && tx.From != GenesisAccount {
				balance -= tx.Amount
			}
		}
	}

	return balance
}

// nextIndex returns the index the next appended block will carry.
func (c *Chain) nextIndex() uint64 {
	if len(c.blocks) == 0 {
		return 0
	}

	return c.blocks[len(c.blocks)-1].Index + 1
}
