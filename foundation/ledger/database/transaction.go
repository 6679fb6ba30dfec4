package database

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pohchain/pohchain/foundation/ledger/signature"
)

// Sentinel addresses for system generated transactions. These accounts are
// exempt from ordinary balance deduction and signature checks.
const (
	GenesisAccount = "genesis"
	MinerAccount   = "miner"
)

// =============================================================================

// Transaction is a value transfer record between two addresses. The JSON
// field order is fixed; block hashing and signing depend on this encoding
// staying canonical.
type Transaction struct {
	ID            string               `json:"id"`
	From          string               `json:"from"`
	To            string               `json:"to"`
	Amount        float64              `json:"amount"`
	Data          *string              `json:"data"`
	Timestamp     time.Time            `json:"timestamp"`
	Signature     *signature.Signature `json:"signature"`
	FromPublicKey *signature.PublicKey `json:"from_public_key"`
}

// NewTransaction constructs an unsigned transaction with a fresh unique id
// and the current UTC time.
func NewTransaction(from string, to string, amount float64, data *string) (Transaction, error) {
	if strings.TrimSpace(from) == "" {
		return Transaction{}, &InputError{Field: "from address", Value: from}
	}

	if strings.TrimSpace(to) == "" {
		return Transaction{}, &InputError{Field: "to address", Value: to}
	}

	if amount < 0 {
		return Transaction{}, &InputError{Field: "amount", Value: strconv.FormatFloat(amount, 'f', -1, 64)}
	}

	tx := Transaction{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Amount:    amount,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	return tx, nil
}

// NewSignedTransaction constructs a transaction with the signature and
// public key already attached.
func NewSignedTransaction(from string, to string, amount float64, data *string, sig signature.Signature, fromPublicKey signature.PublicKey) (Transaction, error) {
	tx, err := NewTransaction(from, to, amount, data)
	if err != nil {
		return Transaction{}, err
	}

	tx.Signature = &sig
	tx.FromPublicKey = &fromPublicKey

	return tx, nil
}

// Sign computes the signature over the transaction's signable data with
// the specified wallet and attaches it along with the public key.
func (tx *Transaction) Sign(w signature.Wallet) error {
	data, err := tx.SignableData()
	if err != nil {
		return err
	}

	sig := w.SignTransaction(data)
	pub := w.KeyPair.PublicKey()

	tx.Signature = &sig
	tx.FromPublicKey = &pub

	return nil
}

// GenesisTransaction constructs the synthetic transaction carried by the
// genesis block.
func GenesisTransaction() Transaction {
	data := "Genesis transaction"

	return Transaction{
		ID:        GenesisAccount,
		From:      GenesisAccount,
		To:        GenesisAccount,
		Amount:    0,
		Data:      &data,
		Timestamp: time.Now().UTC(),
	}
}

// IsCoinbase reports whether this is a miner reward transaction.
func (tx Transaction) IsCoinbase() bool {
	return tx.From == MinerAccount
}

// =============================================================================

// signableTransaction is the view of a transaction used for signing and
// verification. The signature and public key fields are excluded by
// construction to avoid circularity.
type signableTransaction struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Amount    float64   `json:"amount"`
	Data      *string   `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// SignableData produces the canonical byte encoding the signer and the
// verifier must both compute.
func (tx Transaction) SignableData() ([]byte, error) {
	st := signableTransaction{
		ID:        tx.ID,
		From:      tx.From,
		To:        tx.To,
		Amount:    tx.Amount,
		Data:      tx.Data,
		Timestamp: tx.Timestamp,
	}

	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshaling signable data: %w", err)
	}

	return data, nil
}

// VerifySignature checks the cryptographic authorship of the transaction.
// System generated transactions from the genesis and miner accounts are
// trusted unconditionally. Any transaction without both a signature and a
// public key, or whose signature does not match the canonical signable
// bytes, fails the check.
func (tx Transaction) VerifySignature() bool {
	if tx.From == GenesisAccount || tx.From == MinerAccount {
		return true
	}

	if tx.Signature == nil || tx.FromPublicKey == nil {
		return false
	}

	signableData, err := tx.SignableData()
	if err != nil {
		return false
	}

	return tx.FromPublicKey.Verify(signableData, *tx.Signature)
}

// Serialize produces the full canonical JSON form of the transaction. This
// is the payload fed to the PoH clock and embedded in block hashes.
func (tx Transaction) Serialize() (string, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return "", fmt.Errorf("marshaling transaction: %w", err)
	}

	return string(data), nil
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return fmt.Sprintf("%s: %s -> %s [%v]", tx.ID, tx.From, tx.To, tx.Amount)
}
